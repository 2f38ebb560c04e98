package http

import (
	"VLINKS-Backend/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// DomainsHandler обработчик собственных доменов
type DomainsHandler struct {
	responder
	domains *service.DomainService
}

// NewDomainsHandler создает новый обработчик доменов
func NewDomainsHandler(domains *service.DomainService, r responder) *DomainsHandler {
	return &DomainsHandler{
		responder: r,
		domains:   domains,
	}
}

// DomainRequest структура запроса создания и обновления домена
type DomainRequest struct {
	Domain    *string `json:"domain,omitempty"`
	Label     *string `json:"label,omitempty"`
	IsDefault *bool   `json:"is_default,omitempty"`
}

func (req DomainRequest) input() service.DomainInput {
	return service.DomainInput{
		Hostname:  req.Domain,
		Label:     req.Label,
		IsDefault: req.IsDefault,
	}
}

// ListDomains возвращает домены, домен по умолчанию первым
//
//	@Summary	List domains
//	@Tags		Domains
//	@Produce	json
//	@Success	200	{array}	domain.Domain
//	@Router		/api/domains [get]
func (h *DomainsHandler) ListDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := h.domains.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, domains, http.StatusOK)
}

// CreateDomain добавляет домен
//
//	@Summary	Add a domain
//	@Tags		Domains
//	@Accept		json
//	@Produce	json
//	@Param		request	body		DomainRequest	true	"Domain"
//	@Success	201		{object}	domain.Domain
//	@Failure	400		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/api/domains [post]
func (h *DomainsHandler) CreateDomain(w http.ResponseWriter, r *http.Request) {
	var req DomainRequest
	if !h.decode(w, r, &req) {
		return
	}

	d, err := h.domains.Create(r.Context(), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.log.Info("added domain", zap.Int64("domain_id", d.ID), zap.String("hostname", d.Hostname))
	h.writeJSON(w, d, http.StatusCreated)
}

// UpdateDomain обновляет домен
//
//	@Summary	Update a domain
//	@Tags		Domains
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int				true	"Domain ID"
//	@Param		request	body		DomainRequest	true	"Changed fields"
//	@Success	200		{object}	domain.Domain
//	@Failure	404		{object}	ErrorResponse
//	@Router		/api/domains/{id} [put]
func (h *DomainsHandler) UpdateDomain(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req DomainRequest
	if !h.decode(w, r, &req) {
		return
	}

	d, err := h.domains.Update(r.Context(), id, req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, d, http.StatusOK)
}

// DeleteDomain удаляет домен; видео отвязываются
//
//	@Summary	Delete a domain
//	@Tags		Domains
//	@Param		id	path	int	true	"Domain ID"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/domains/{id} [delete]
func (h *DomainsHandler) DeleteDomain(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.domains.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
