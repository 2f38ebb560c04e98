package http

import (
	"VLINKS-Backend/internal/repository"
	"VLINKS-Backend/internal/service"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// responder общие помощники для JSON-ответов
type responder struct {
	log        *zap.Logger
	validate   *validator.Validate
	production bool
}

func newResponder(log *zap.Logger, env string) responder {
	validate := validator.New()
	// в сообщениях используются имена полей из JSON
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return responder{
		log:        log,
		validate:   validate,
		production: env == "production" || env == "prod",
	}
}

// writeJSON отправляет JSON ответ
func (h responder) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to encode JSON response", zap.Error(err))
	}
}

// writeError отправляет ошибку в формате JSON
func (h responder) writeError(w http.ResponseWriter, message string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: message}, statusCode)
}

// decode читает тело запроса и проверяет теги validate
func (h responder) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			h.writeError(w, "Request body is required", http.StatusBadRequest)
			return false
		}
		h.log.Debug("invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return false
	}

	if reflect.Indirect(reflect.ValueOf(dst)).Kind() != reflect.Struct {
		return true
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeError(w, validationMessage(err), http.StatusBadRequest)
		return false
	}
	return true
}

// fail переводит ошибку сервиса в HTTP статус
func (h responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeError(w, verr.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrUnauthorized):
		h.writeError(w, "Invalid webhook secret", http.StatusUnauthorized)
	case errors.Is(err, repository.ErrVideoNotFound):
		h.writeError(w, "Video not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrLinkNotFound):
		h.writeError(w, "Link not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrTemplateNotFound):
		h.writeError(w, "Template not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrDomainNotFound):
		h.writeError(w, "Domain not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrBookingNotFound):
		h.writeError(w, "Booking not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrLinkLabelExists),
		errors.Is(err, repository.ErrTemplateLabelExists),
		errors.Is(err, repository.ErrDomainExists),
		errors.Is(err, repository.ErrSlugExists):
		h.writeError(w, conflictMessage(err), http.StatusConflict)
	case errors.Is(err, service.ErrLinkExpired):
		h.writeError(w, "Link has expired", http.StatusGone)
	default:
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		resp := ErrorResponse{Error: "Internal server error"}
		if !h.production {
			resp.Detail = err.Error()
		}
		h.writeJSON(w, resp, http.StatusInternalServerError)
	}
}

func conflictMessage(err error) string {
	for _, sentinel := range []error{
		repository.ErrLinkLabelExists,
		repository.ErrTemplateLabelExists,
		repository.ErrDomainExists,
		repository.ErrSlugExists,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request data"
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "url", "http_url":
		return field + " must be a valid URL"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "min":
		return field + " must not be empty"
	default:
		return field + " is invalid"
	}
}

// pathID читает числовой параметр маршрута
func (h responder) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// queryVideoID читает необязательный videoId из query
func (h responder) queryVideoID(w http.ResponseWriter, r *http.Request) (*int64, bool) {
	raw := r.URL.Query().Get("videoId")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, "Invalid videoId", http.StatusBadRequest)
		return nil, false
	}
	return &id, true
}
