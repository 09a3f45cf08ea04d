package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testHandler() *BookingHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBookingHandler(nil, nil, logger, 0)
}

func postBooking(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/book", strings.NewReader(body))
	rec := httptest.NewRecorder()
	testHandler().Create(rec, req)
	return rec
}

func TestCreate_RequiresContactFields(t *testing.T) {
	base := map[string]string{
		"provider_id":  "prov-1",
		"service_id":   "svc-1",
		"client_name":  "Maria Silva",
		"client_email": "maria@example.com",
		"client_phone": "+55 11 98888-7777",
		"date":         "2024-06-10",
		"start_time":   "10:00",
	}

	for _, missing := range []string{"client_name", "client_email", "client_phone"} {
		var b strings.Builder
		b.WriteString("{")
		first := true
		for k, v := range base {
			if k == missing {
				continue
			}
			if !first {
				b.WriteString(",")
			}
			first = false
			b.WriteString(`"` + k + `":"` + v + `"`)
		}
		b.WriteString("}")

		rec := postBooking(t, b.String())
		if rec.Code != http.StatusBadRequest {
			t.Errorf("missing %s: status = %d, want %d", missing, rec.Code, http.StatusBadRequest)
		}
	}

	// Whitespace-only phone is as missing as an absent field.
	rec := postBooking(t, `{"provider_id":"prov-1","service_id":"svc-1","client_name":"Maria Silva","client_email":"maria@example.com","client_phone":"   ","date":"2024-06-10","start_time":"10:00"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank phone: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreate_RejectsMalformedInput(t *testing.T) {
	if rec := postBooking(t, "{not json"); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed json: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if rec := postBooking(t, `{"provider_id":"prov-1","service_id":"svc-1","client_name":"Maria","client_email":"m@example.com","client_phone":"11 98888-7777","date":"10/06/2024","start_time":"10:00"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad date format: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if rec := postBooking(t, `{"provider_id":"prov-1","service_id":"svc-1","client_name":"Maria","client_email":"m@example.com","client_phone":"11 98888-7777","date":"2024-06-10","start_time":"10h00"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad time format: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/book", nil)
	rec := httptest.NewRecorder()
	testHandler().Create(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
