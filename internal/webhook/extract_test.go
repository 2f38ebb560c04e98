package webhook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, body string) Payload {
	t.Helper()
	p, err := Decode([]byte(body))
	require.NoError(t, err)
	return p
}

func TestDecode(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		p := mustDecode(t, `{"id": 12345678901234567890}`)
		assert.Equal(t, "12345678901234567890", stringify(p["id"]))
	})

	for name, body := range map[string]string{
		"array":    `[1,2]`,
		"scalar":   `"text"`,
		"null":     `null`,
		"broken":   `{"a":`,
		"trailing": `{"a":1} {"b":2}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestExtractUTMs_KeySpellings(t *testing.T) {
	bodies := map[string]string{
		"snake":       `{"utm_source":"yt"}`,
		"camel":       `{"utmSource":"yt"}`,
		"pascal":      `{"UtmSource":"yt"}`,
		"upper":       `{"UTM_SOURCE":"yt"}`,
		"flat":        `{"utmsource":"yt"}`,
		"dashed":      `{"utm-source":"yt"}`,
		"contact":     `{"contact":{"utm_source":"yt"}}`,
		"appointment": `{"appointment":{"utmSource":"yt"}}`,
		"custom":      `{"customFields":{"UTM_SOURCE":"yt"}}`,
		"custom list": `{"customData":[{"key":"utm_source","value":"yt"}]}`,
		"attribution": `{"attributionSource":{"utmSource":"yt"}}`,
		"meta":        `{"meta":{"utm_source":"yt"}}`,
		"data":        `{"data":{"utm_source":"yt"}}`,
		"source url":  `{"source_url":"https://cal.example/x?utm_source=yt"}`,
		"page url":    `{"pageUrl":"https://cal.example/x?utm_source=yt"}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, "yt", ExtractUTMs(mustDecode(t, body)).Source)
		})
	}
}

func TestExtractUTMs_Priority(t *testing.T) {
	t.Run("root beats contact", func(t *testing.T) {
		u := ExtractUTMs(mustDecode(t, `{"utm_term":"root","contact":{"utm_term":"contact"}}`))
		assert.Equal(t, "root", u.Term)
	})

	t.Run("contact beats custom fields", func(t *testing.T) {
		u := ExtractUTMs(mustDecode(t, `{"contact":{"utmCampaign":"a"},"custom_fields":{"utm_campaign":"b"}}`))
		assert.Equal(t, "a", u.Campaign)
	})

	t.Run("empty and null are skipped", func(t *testing.T) {
		u := ExtractUTMs(mustDecode(t, `{"utm_content":"","contact":{"utm_content":null},"meta":{"utm_content":"  "},"data":{"utm_content":"cta"}}`))
		assert.Equal(t, "cta", u.Content)
	})

	t.Run("empty spelling does not hide another spelling", func(t *testing.T) {
		bodies := []string{
			`{"utmsource":"","utm_source":"yt"}`,
			`{"UTM_SOURCE":null,"utm_source":"yt"}`,
			`{"UTM_SOURCE":"","utmSource":"yt"}`,
			`{"contact":{"utm_source":"","utmSource":"yt"}}`,
		}
		for _, body := range bodies {
			assert.Equal(t, "yt", ExtractUTMs(mustDecode(t, body)).Source, body)
		}
	})

	t.Run("fields resolve independently", func(t *testing.T) {
		u := ExtractUTMs(mustDecode(t, `{"utm_source":"yt","contact":{"utm_campaign":"demo"},"data":{"utm_term":"s1"}}`))
		assert.Equal(t, UTMs{Source: "yt", Campaign: "demo", Term: "s1"}, u)
	})

	t.Run("url only fills missing fields", func(t *testing.T) {
		u := ExtractUTMs(mustDecode(t, `{"utm_campaign":"direct","sourceUrl":"https://x.example/?utm_campaign=url&utm_content=cta&utm_term=s1"}`))
		assert.Equal(t, "direct", u.Campaign)
		assert.Equal(t, "cta", u.Content)
		assert.Equal(t, "s1", u.Term)
	})

	t.Run("numeric values", func(t *testing.T) {
		u := ExtractUTMs(mustDecode(t, `{"utm_term":42}`))
		assert.Equal(t, "42", u.Term)
	})

	t.Run("nothing", func(t *testing.T) {
		assert.Equal(t, UTMs{}, ExtractUTMs(mustDecode(t, `{"contact":{"name":"Jane"}}`)))
	})
}

func TestExtract_Contact(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		want  string
		email string
		id    string
	}{
		{"full name", `{"contact":{"name":"Jane Doe","email":"jane@example.com","id":"c1"}}`, "Jane Doe", "jane@example.com", "c1"},
		{"full_name", `{"contact":{"full_name":"Jane Doe","contact_email":"j@x.io","contactId":"c2"}}`, "Jane Doe", "j@x.io", "c2"},
		{"first and last", `{"contact":{"first_name":"Jane","lastName":"Doe"}}`, "Jane Doe", "", ""},
		{"first only", `{"firstName":"Jane"}`, "Jane", "", ""},
		{"flat payload", `{"name":"Jane","email":"jane@example.com","contact_id":"c3"}`, "Jane", "jane@example.com", "c3"},
		{"contact parts beat root name", `{"name":"Intro Call","contact":{"first_name":"Jane","last_name":"Doe"}}`, "Jane Doe", "", ""},
		{"root name when contact has none", `{"name":"Jane Roe","contact":{"email":"jane@example.com"}}`, "Jane Roe", "jane@example.com", ""},
		{"empty full name falls back to parts", `{"contact":{"name":"","fullName":null,"firstName":"Jane"}}`, "Jane", "", ""},
		{"nothing", `{}`, "Unknown", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Extract(mustDecode(t, tt.body))
			assert.Equal(t, tt.want, ev.ContactName)
			assert.Equal(t, tt.email, ev.ContactEmail)
			assert.Equal(t, tt.id, ev.ContactID)
		})
	}
}

func TestExtract_Appointment(t *testing.T) {
	t.Run("nested appointment", func(t *testing.T) {
		ev := Extract(mustDecode(t, `{"type":"AppointmentCreate","id":"evt-1","appointment":{"id":"apt-1","startTime":"2025-03-01T15:00:00Z"}}`))
		assert.Equal(t, "apt-1", ev.BookingID)
		require.NotNil(t, ev.AppointmentAt)
		assert.True(t, ev.AppointmentAt.Equal(time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)))
		assert.Equal(t, KindCreated, ev.Kind)
		assert.Equal(t, "AppointmentCreate", ev.RawType)
	})

	t.Run("calendar object", func(t *testing.T) {
		ev := Extract(mustDecode(t, `{"calendar":{"appointmentId":"apt-2","selectedTimeslot":"2025-03-01 15:00:00"}}`))
		assert.Equal(t, "apt-2", ev.BookingID)
		require.NotNil(t, ev.AppointmentAt)
	})

	t.Run("root id fallback", func(t *testing.T) {
		ev := Extract(mustDecode(t, `{"event":"appointment.cancelled","id":987654321}`))
		assert.Equal(t, "987654321", ev.BookingID)
		assert.Equal(t, KindCancelled, ev.Kind)
	})

	t.Run("unix millis", func(t *testing.T) {
		ev := Extract(mustDecode(t, `{"start_time":1740841200000}`))
		require.NotNil(t, ev.AppointmentAt)
		assert.Equal(t, int64(1740841200), ev.AppointmentAt.Unix())
	})

	t.Run("unparseable time", func(t *testing.T) {
		assert.Nil(t, Extract(mustDecode(t, `{"start_time":"next tuesday"}`)).AppointmentAt)
	})
}

func TestClassify(t *testing.T) {
	tests := map[string]EventKind{
		"":                        KindCreated,
		"appointment.created":     KindCreated,
		"AppointmentCreate":       KindCreated,
		"appointment.cancelled":   KindCancelled,
		"Appointment Canceled":    KindCancelled,
		"appointment.completed":   KindCompleted,
		"contact showed":          KindCompleted,
		"appointment.no-show":     KindNoShow,
		"NOSHOW":                  KindNoShow,
		"appointment_no_show":     KindNoShow,
		"appointment.no_showed":   KindNoShow,
		"appointment.rescheduled": KindCreated,
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Classify(in))
		})
	}
}
