package vault

import (
	"context"
	"errors"
	"strings"
	"testing"

	"zapateria-storefront/internal/domain"
	"zapateria-storefront/internal/storage"
)

func presetInput() SavePresetInput {
	return SavePresetInput{
		FullName:   "Ana Rodriguez",
		Email:      "Ana@Example.com",
		Address:    "Calle El Conde 123",
		City:       "Santo Domingo",
		Country:    "Dominican Republic",
		CardNumber: "4111111111111111",
		Expiration: "09/27",
	}
}

func TestSavePresetMasksCard(t *testing.T) {
	kv := storage.NewMemStore()
	v := New(kv, nil, nil)

	preset := v.SavePreset("u1", presetInput())
	if preset == nil {
		t.Fatalf("expected preset to be saved")
	}
	card := preset.Card
	if card.Brand != "visa" || card.Last4 != "1111" || card.ExpMonth != 9 || card.ExpYear != 2027 {
		t.Fatalf("unexpected card fragment %+v", card)
	}
	if preset.Email != "ana@example.com" {
		t.Fatalf("expected lowercased email, got %q", preset.Email)
	}

	raw, ok, err := kv.Get("zapateria_presets_u1")
	if err != nil || !ok {
		t.Fatalf("expected persisted presets, ok=%v err=%v", ok, err)
	}
	if strings.Contains(string(raw), "4111111111111111") {
		t.Fatalf("full card number leaked into storage: %s", raw)
	}
	if strings.Contains(string(raw), "411111") {
		t.Fatalf("more than last4 leaked into storage: %s", raw)
	}
}

func TestSavePresetRejectsInvalidInput(t *testing.T) {
	v := New(storage.NewMemStore(), nil, nil)

	in := presetInput()
	in.CardNumber = "12"
	if v.SavePreset("u1", in) != nil {
		t.Fatalf("expected nil for too-short card number")
	}

	in = presetInput()
	in.Expiration = "September 2027"
	if v.SavePreset("u1", in) != nil {
		t.Fatalf("expected nil for malformed expiration")
	}

	in = presetInput()
	in.Expiration = "09/203"
	if v.SavePreset("u1", in) != nil {
		t.Fatalf("expected nil for a 3-digit year")
	}

	if got := len(v.Presets("u1")); got != 0 {
		t.Fatalf("invalid input must not persist presets, got %d", got)
	}
}

func TestSavePresetAcceptsFourDigitYear(t *testing.T) {
	v := New(storage.NewMemStore(), nil, nil)
	in := presetInput()
	in.Expiration = "09/2027"
	preset := v.SavePreset("u1", in)
	if preset == nil || preset.Card.ExpYear != 2027 {
		t.Fatalf("expected expYear 2027, got %+v", preset)
	}
}

func TestSavePresetDeduplicates(t *testing.T) {
	v := New(storage.NewMemStore(), nil, nil)

	if v.SavePreset("u1", presetInput()) == nil {
		t.Fatalf("first save failed")
	}
	if v.SavePreset("u1", presetInput()) == nil {
		t.Fatalf("duplicate save should still return the preset")
	}
	if got := len(v.Presets("u1")); got != 1 {
		t.Fatalf("expected one stored preset, got %d", got)
	}

	in := presetInput()
	in.Address = "Av. Winston Churchill 45"
	if v.SavePreset("u1", in) == nil {
		t.Fatalf("distinct save failed")
	}
	if got := len(v.Presets("u1")); got != 2 {
		t.Fatalf("expected two stored presets, got %d", got)
	}
}

func TestPresetsDiscardMalformedStoredValue(t *testing.T) {
	kv := storage.NewMemStore()
	v := New(kv, nil, nil)
	preset := v.SavePreset("u1", presetInput())
	if preset == nil {
		t.Fatalf("seed preset failed")
	}

	// A list with a non-object element must be discarded entirely, not
	// decoded into a partial result with a zero-valued entry.
	raw, ok, err := kv.Get("zapateria_presets_u1")
	if err != nil || !ok {
		t.Fatalf("read seeded presets: ok=%v err=%v", ok, err)
	}
	corrupted := "[" + strings.TrimSuffix(strings.TrimPrefix(string(raw), "["), "]") + ",42]"
	if err := kv.Set("zapateria_presets_u1", []byte(corrupted)); err != nil {
		t.Fatalf("seed corrupted presets: %v", err)
	}

	if got := v.Presets("u1"); len(got) != 0 {
		t.Fatalf("corrupted list must read as no presets, got %+v", got)
	}

	if err := kv.Set("zapateria_presets_u1", []byte(`{"id":"preset-1"}`)); err != nil {
		t.Fatalf("seed non-list presets: %v", err)
	}
	if got := v.Presets("u1"); len(got) != 0 {
		t.Fatalf("non-list value must read as no presets, got %+v", got)
	}
}

func TestCardsDiscardMalformedStoredValue(t *testing.T) {
	kv := storage.NewMemStore()
	v := New(kv, nil, nil)
	if err := kv.Set("zapateria_saved_cards_u1", []byte(`[{"id":"local-1","last4":"1111"},42]`)); err != nil {
		t.Fatalf("seed corrupted cards: %v", err)
	}

	if got := v.Cards(context.Background(), "u1"); len(got) != 0 {
		t.Fatalf("corrupted list must read as no cards, got %+v", got)
	}
}

func TestPresetsAreNamespacedPerUser(t *testing.T) {
	v := New(storage.NewMemStore(), nil, nil)
	v.SavePreset("u1", presetInput())

	if got := len(v.Presets("u2")); got != 0 {
		t.Fatalf("presets leaked across users: %d", got)
	}
}

func TestApplyPresetNeverRestoresRealNumber(t *testing.T) {
	v := New(storage.NewMemStore(), nil, nil)
	preset := v.SavePreset("u1", presetInput())

	form := ApplyPreset(*preset)
	if form.CardNumber != "**** **** **** 1111" {
		t.Fatalf("unexpected masked number %q", form.CardNumber)
	}
	if form.CVV != "" {
		t.Fatalf("cvv must always be blank, got %q", form.CVV)
	}
	if form.Expiration != "09/27" {
		t.Fatalf("unexpected expiration %q", form.Expiration)
	}
	if form.FullName != "Ana Rodriguez" || form.City != "Santo Domingo" {
		t.Fatalf("delivery fields not applied: %+v", form)
	}
}

func TestDetectBrand(t *testing.T) {
	cases := []struct {
		digits string
		brand  string
	}{
		{"4242424242424242", "visa"},
		{"5105105105105100", "mastercard"},
		{"5500000000000004", "mastercard"},
		{"340000000000009", "amex"},
		{"370000000000002", "amex"},
		{"6011000000000004", "discover"},
		{"6500000000000002", "discover"},
		{"9999999999999999", "card"},
		{"5600000000000000", "card"},
	}
	for _, tc := range cases {
		if got := DetectBrand(tc.digits); got != tc.brand {
			t.Fatalf("DetectBrand(%s) = %q, want %q", tc.digits, got, tc.brand)
		}
	}
}

type stubRemoteCards struct {
	cards []domain.SavedCard
	err   error
}

func (s *stubRemoteCards) UserCards(_ context.Context, _ string) ([]domain.SavedCard, error) {
	return s.cards, s.err
}

func TestCardsMergeRemoteAndLocal(t *testing.T) {
	remote := &stubRemoteCards{cards: []domain.SavedCard{
		{ID: "r1", Brand: "visa", Last4: "1111", ExpMonth: 9, ExpYear: 2027},
	}}
	v := New(storage.NewMemStore(), remote, nil)

	// Same card locally: must be de-duplicated against the remote copy.
	v.SaveCard("u1", SaveCardInput{CardNumber: "4111111111111111", Expiration: "09/27"})
	v.SaveCard("u1", SaveCardInput{CardNumber: "5105105105105100", Expiration: "01/28", HolderName: "Ana"})

	cards := v.Cards(context.Background(), "u1")
	if len(cards) != 2 {
		t.Fatalf("expected 2 merged cards, got %d: %+v", len(cards), cards)
	}
	if cards[0].ID != "r1" {
		t.Fatalf("remote cards must come first, got %+v", cards[0])
	}
}

func TestCardsFallBackToLocalOnRemoteError(t *testing.T) {
	remote := &stubRemoteCards{err: errors.New("connection refused")}
	v := New(storage.NewMemStore(), remote, nil)
	v.SaveCard("u1", SaveCardInput{CardNumber: "4111111111111111", Expiration: "09/27"})

	cards := v.Cards(context.Background(), "u1")
	if len(cards) != 1 || cards[0].Last4 != "1111" {
		t.Fatalf("expected local card only, got %+v", cards)
	}
}

func TestParseExpirationClampsMonth(t *testing.T) {
	month, year, ok := parseExpiration("0/29")
	if !ok || month != 1 || year != 2029 {
		t.Fatalf("expected month clamped to 1, got %d/%d ok=%v", month, year, ok)
	}
}
