package webhook

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// container names a candidate object. No aliases means the payload root;
// otherwise aliases are normalized spellings of the same container key.
type container struct {
	aliases []string
}

var (
	root         = container{}
	contact      = container{aliases: []string{"contact"}}
	appointment  = container{aliases: []string{"appointment"}}
	calendar     = container{aliases: []string{"calendar"}}
	customFields = container{aliases: []string{"customfields", "customdata", "customfield"}}
	attribution  = container{aliases: []string{"attribution", "attributionsource", "lastattributionsource"}}
	meta         = container{aliases: []string{"meta", "metadata"}}
	data         = container{aliases: []string{"data"}}
)

// field is an ordered list of candidate containers and the normalized key
// spellings probed in each. The first non-empty value wins.
type field struct {
	sources []container
	keys    []string
}

var utmSources = []container{root, contact, appointment, calendar, customFields, attribution, meta, data}

var (
	fieldUTMSource   = field{sources: utmSources, keys: []string{"utmsource"}}
	fieldUTMCampaign = field{sources: utmSources, keys: []string{"utmcampaign"}}
	fieldUTMContent  = field{sources: utmSources, keys: []string{"utmcontent"}}
	fieldUTMTerm     = field{sources: utmSources, keys: []string{"utmterm"}}

	fieldEventType = field{sources: []container{root}, keys: []string{"type", "event", "eventtype"}}

	fieldEmail         = field{sources: []container{contact, root}, keys: []string{"email", "contactemail"}}
	fieldContactID     = field{sources: []container{contact}, keys: []string{"id", "contactid"}}
	fieldRootContactID = field{sources: []container{root}, keys: []string{"contactid"}}

	fieldBookingID     = field{sources: []container{appointment, calendar}, keys: []string{"id", "appointmentid", "bookingid"}}
	fieldRootBookingID = field{sources: []container{root}, keys: []string{"appointmentid", "bookingid", "id"}}

	fieldStartTime = field{
		sources: []container{appointment, calendar, root},
		keys:    []string{"starttime", "selectedslot", "selectedtimeslot", "appointmentstarttime"},
	}

	fieldSourceURL = field{sources: []container{root, contact, attribution}, keys: []string{"sourceurl", "pageurl"}}
)

// resolve returns the container object in p, or nil when p has none.
// A spelling whose value is not an object does not hide another spelling
// that holds one.
func (c container) resolve(p Payload) map[string]any {
	if c.aliases == nil {
		return p
	}
	for _, alias := range c.aliases {
		for _, v := range lookupAll(p, alias) {
			if obj := object(v); obj != nil {
				return obj
			}
		}
	}
	return nil
}

// objects returns the candidate containers present in p, in priority order.
func (f field) objects(p Payload) []map[string]any {
	objs := make([]map[string]any, 0, len(f.sources))
	for _, c := range f.sources {
		if obj := c.resolve(p); obj != nil {
			objs = append(objs, obj)
		}
	}
	return objs
}

func (f field) get(p Payload) string {
	for _, obj := range f.objects(p) {
		if s := firstString(obj, f.keys...); s != "" {
			return s
		}
	}
	return ""
}

// UTMs is the canonical tracking tuple; "" means absent.
type UTMs struct {
	Source   string
	Campaign string
	Content  string
	Term     string
}

// ExtractUTMs resolves the four tracking fields. Fields still missing after
// the candidate containers are taken from the query string of a source or
// page URL, when the payload has one.
func ExtractUTMs(p Payload) UTMs {
	u := UTMs{
		Source:   fieldUTMSource.get(p),
		Campaign: fieldUTMCampaign.get(p),
		Content:  fieldUTMContent.get(p),
		Term:     fieldUTMTerm.get(p),
	}
	if u.complete() {
		return u
	}

	raw := fieldSourceURL.get(p)
	if raw == "" {
		return u
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return u
	}
	q := parsed.Query()
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = strings.TrimSpace(q.Get(key))
		}
	}
	fill(&u.Source, "utm_source")
	fill(&u.Campaign, "utm_campaign")
	fill(&u.Content, "utm_content")
	fill(&u.Term, "utm_term")
	return u
}

func (u UTMs) complete() bool {
	return u.Source != "" && u.Campaign != "" && u.Content != "" && u.Term != ""
}

// Event is the normalized view of a booking webhook.
type Event struct {
	RawType       string
	Kind          EventKind
	ContactName   string
	ContactEmail  string
	ContactID     string
	BookingID     string
	AppointmentAt *time.Time
	UTMs          UTMs
}

const unknownContact = "Unknown"

// Extract normalizes a payload into an Event.
func Extract(p Payload) *Event {
	ev := &Event{
		RawType:      fieldEventType.get(p),
		ContactName:  contactName(p),
		ContactEmail: fieldEmail.get(p),
		ContactID:    firstNonEmpty(fieldContactID.get(p), fieldRootContactID.get(p)),
		BookingID:    firstNonEmpty(fieldBookingID.get(p), fieldRootBookingID.get(p)),
		UTMs:         ExtractUTMs(p),
	}
	ev.Kind = Classify(ev.RawType)
	ev.AppointmentAt = parseTime(fieldStartTime.get(p))
	return ev
}

// Contact name candidates are probed per container: a full name, then
// first and last name, before falling back to the next container.
var (
	nameSources  = []container{contact, root}
	fullNameKeys = []string{"name", "fullname", "contactname"}
)

func contactName(p Payload) string {
	for _, c := range nameSources {
		obj := c.resolve(p)
		if obj == nil {
			continue
		}
		if name := firstString(obj, fullNameKeys...); name != "" {
			return name
		}
		parts := make([]string, 0, 2)
		for _, key := range []string{"firstname", "lastname"} {
			if s := firstString(obj, key); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	return unknownContact
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime accepts RFC 3339 variants and unix seconds or milliseconds.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		var t time.Time
		if n > 1e12 {
			t = time.UnixMilli(n).UTC()
		} else {
			t = time.Unix(n, 0).UTC()
		}
		return &t
	}
	return nil
}
