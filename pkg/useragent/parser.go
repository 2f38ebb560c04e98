package useragent

import (
	"fmt"
	"os"
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"
)

// Device classes
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"

	unknown = "unknown"
)

// Parser wraps the uap-go parser with device class detection
type Parser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

// DeviceInfo represents parsed device information
type DeviceInfo struct {
	DeviceType string // mobile, desktop, tablet, bot, unknown
	Browser    string // Chrome, Firefox, Safari, etc.
	OS         string // Windows, iOS, Android, etc.
}

var (
	botIndicators = []string{
		"googlebot", "bingbot", "slurp", "duckduckbot", "baiduspider",
		"yandexbot", "facebookexternalhit", "twitterbot", "linkedinbot",
		"whatsapp", "telegram", "skypeuripreview", "bot", "crawler",
		"spider", "scraper",
	}
	tabletDevices = []string{"ipad", "tablet", "kindle", "surface"}
	mobileDevices = []string{"iphone", "android", "blackberry", "windows phone", "mobile", "phone"}
	mobileOS      = []string{"ios", "android", "windows phone", "blackberry os", "firefox os", "sailfish os"}
	desktopOS     = []string{"windows", "mac os x", "macos", "linux", "ubuntu", "chrome os", "freebsd", "openbsd", "netbsd"}
)

// NewParser creates a parser from a uap-core regexes.yaml file
func NewParser(regexFilePath string, log *zap.Logger) (*Parser, error) {
	regexBytes, err := os.ReadFile(regexFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read regexes file %s: %w", regexFilePath, err)
	}

	parser, err := uaparser.NewFromBytes(regexBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create User-Agent parser: %w", err)
	}

	log.Info("User-Agent parser initialized", zap.String("regexes_file", regexFilePath))

	return &Parser{parser: parser, log: log}, nil
}

// NewDefaultParser creates a parser from the regexes bundled with uap-go
func NewDefaultParser(log *zap.Logger) *Parser {
	return &Parser{parser: uaparser.NewFromSaved(), log: log}
}

// Load tries the regexes file first and falls back to the bundled definitions
func Load(regexFilePath string, log *zap.Logger) *Parser {
	if regexFilePath != "" {
		parser, err := NewParser(regexFilePath, log)
		if err == nil {
			return parser
		}
		log.Warn("failed to load User-Agent regexes, using bundled definitions", zap.Error(err))
	}
	return NewDefaultParser(log)
}

// Parse returns browser, OS and device class for a User-Agent string
func (p *Parser) Parse(userAgent string) *DeviceInfo {
	if strings.TrimSpace(userAgent) == "" {
		return &DeviceInfo{DeviceType: DeviceUnknown, Browser: unknown, OS: unknown}
	}

	client := p.parser.Parse(userAgent)

	info := &DeviceInfo{
		Browser:    familyOrUnknown(client.UserAgent.Family),
		OS:         familyOrUnknown(client.Os.Family),
		DeviceType: determineDeviceType(client, userAgent),
	}

	p.log.Debug("parsed User-Agent",
		zap.String("device_type", info.DeviceType),
		zap.String("browser", info.Browser),
		zap.String("os", info.OS),
	)

	return info
}

// determineDeviceType checks bots first, then device family, then OS family
func determineDeviceType(client *uaparser.Client, userAgent string) string {
	ua := strings.ToLower(userAgent)
	uaFamily := strings.ToLower(client.UserAgent.Family)
	deviceFamily := strings.ToLower(client.Device.Family)
	osFamily := strings.ToLower(client.Os.Family)

	if containsAny(uaFamily, botIndicators) || containsAny(ua, botIndicators) || deviceFamily == "spider" {
		return DeviceBot
	}

	if deviceFamily != "" && deviceFamily != "other" {
		if containsAny(deviceFamily, tabletDevices) {
			return DeviceTablet
		}
		if containsAny(deviceFamily, mobileDevices) {
			return DeviceMobile
		}
	}

	if containsAny(osFamily, mobileOS) {
		switch {
		case strings.Contains(osFamily, "ios"):
			if strings.Contains(ua, "ipad") {
				return DeviceTablet
			}
		case strings.Contains(osFamily, "android"):
			// Android tablets don't send "Mobile"
			if !strings.Contains(ua, "mobile") {
				return DeviceTablet
			}
		}
		return DeviceMobile
	}

	if containsAny(osFamily, desktopOS) {
		return DeviceDesktop
	}

	return DeviceUnknown
}

func containsAny(s string, needles []string) bool {
	if s == "" {
		return false
	}
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func familyOrUnknown(s string) string {
	if s == "" || s == "Other" {
		return unknown
	}
	return s
}
