package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testBody() CreateBody {
	return CreateBody{
		FullName:   "Ana Rodriguez",
		Email:      "ana@example.com",
		Address:    "Calle El Conde 123",
		City:       "Santo Domingo",
		Country:    "Dominican Republic",
		CardNumber: "4242424242424242",
		Expiration: "09/27",
		CCV:        "123",
		Amount:     decimal.RequireFromString("100.00"),
		Currency:   "USD",
	}
}

func TestCreateUnwrapsDataEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/payments" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var got CreateBody
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if got.CardNumber != "4242424242424242" {
			t.Fatalf("card number not forwarded: %q", got.CardNumber)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"pay-1","full_name":"Ana Rodriguez","card_last4":"4242","amount":"100.00","currency":"USD"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	payment, err := c.Create(context.Background(), testBody())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if payment.ID != "pay-1" || payment.CardLast4 != "4242" {
		t.Fatalf("unexpected payment %+v", payment)
	}
}

func TestCreateAcceptsBareObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"id":"pay-2","amount":"50.00","currency":"USD"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	payment, err := c.Create(context.Background(), testBody())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if payment.ID != "pay-2" {
		t.Fatalf("unexpected payment %+v", payment)
	}
}

func TestCreateSurfacesFirstFieldError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"The given data was invalid.","errors":{"card_number":["The card number is invalid."]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.Create(context.Background(), testBody())

	var rejection *RejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("expected RejectionError, got %v", err)
	}
	if rejection.Message != "The card number is invalid." {
		t.Fatalf("expected first field error, got %q", rejection.Message)
	}
	if rejection.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d", rejection.StatusCode)
	}
}

func TestCreateFallsBackToTopLevelMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Request malformed."}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.Create(context.Background(), testBody())

	var rejection *RejectionError
	if !errors.As(err, &rejection) || rejection.Message != "Request malformed." {
		t.Fatalf("expected top-level message, got %v", err)
	}
}

func TestCreateUnreachableReturnsErrUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listens here anymore

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.Create(context.Background(), testBody())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestListParsesPaginator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("per_page") != "5" {
			t.Fatalf("pagination params not forwarded: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"current_page":2,"data":[{"id":"pay-1"}],"per_page":5,"total":11}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	page, err := c.List(context.Background(), ListParams{Page: 2, PerPage: 5})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.CurrentPage != 2 || page.Total != 11 || len(page.Data) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestListAcceptsPlainArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"id":"pay-1"},{"id":"pay-2"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	page, err := c.List(context.Background(), ListParams{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.CurrentPage != 1 || page.Total != 2 || len(page.Data) != 2 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestUserCardsTreats404AsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	cards, err := c.UserCards(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected no error for 404, got %v", err)
	}
	if cards != nil {
		t.Fatalf("expected no cards, got %+v", cards)
	}
}

func TestDeleteReturnsRejectionOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	err := c.Delete(context.Background(), "pay-1")
	var rejection *RejectionError
	if !errors.As(err, &rejection) || rejection.Message != "boom" {
		t.Fatalf("expected rejection with message, got %v", err)
	}
}
