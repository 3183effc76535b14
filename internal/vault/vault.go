// Package vault persists per-user checkout presets and saved cards in
// durable local storage. Only masked card metadata is ever stored: the
// brand, the last four digits, the expiry and the holder name.
package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"zapateria-storefront/internal/domain"
	"zapateria-storefront/internal/storage"
)

var (
	nonDigits  = regexp.MustCompile(`\D+`)
	expiration = regexp.MustCompile(`^(\d{1,2})/(\d{2,4})$`)
)

// RemoteCards is the optional remote source saved cards are merged with.
type RemoteCards interface {
	UserCards(ctx context.Context, userID string) ([]domain.SavedCard, error)
}

type Vault struct {
	kv     storage.KV
	remote RemoteCards
	logger *log.Logger
}

// New builds a vault over kv. remote may be nil; Cards then reads local
// entries only.
func New(kv storage.KV, remote RemoteCards, logger *log.Logger) *Vault {
	return &Vault{kv: kv, remote: remote, logger: logger}
}

func presetsKey(userID string) string {
	return "zapateria_presets_" + userID
}

func cardsKey(userID string) string {
	return "zapateria_saved_cards_" + userID
}

// Presets returns all checkout presets stored for the user. Malformed
// stored data reads as no presets.
func (v *Vault) Presets(userID string) []domain.CheckoutPreset {
	raw, ok := v.readRaw(presetsKey(userID))
	if !ok {
		return nil
	}
	var out []domain.CheckoutPreset
	if err := json.Unmarshal(raw, &out); err != nil {
		v.logf("discarding malformed value under %s: %v", presetsKey(userID), err)
		return nil
	}
	return out
}

// SavePresetInput carries the raw checkout form fields a preset is built
// from. The card number is reduced to masked metadata before storage.
type SavePresetInput struct {
	FullName   string
	Email      string
	Address    string
	City       string
	Country    string
	CardNumber string
	Expiration string
}

// SavePreset validates the input, derives the masked card fragment and
// appends the preset unless an identical one already exists. Returns nil
// when validation fails; saving is best-effort and never blocks checkout.
func (v *Vault) SavePreset(userID string, in SavePresetInput) *domain.CheckoutPreset {
	digits := nonDigits.ReplaceAllString(in.CardNumber, "")
	if len(digits) < 4 {
		return nil
	}
	expMonth, expYear, ok := parseExpiration(in.Expiration)
	if !ok {
		return nil
	}

	fullName := strings.TrimSpace(in.FullName)
	preset := domain.CheckoutPreset{
		ID:       "preset-" + uuid.NewString(),
		FullName: fullName,
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Address:  strings.TrimSpace(in.Address),
		City:     strings.TrimSpace(in.City),
		Country:  strings.TrimSpace(in.Country),
		Card: domain.CardFragment{
			Brand:      DetectBrand(digits),
			Last4:      digits[len(digits)-4:],
			ExpMonth:   expMonth,
			ExpYear:    expYear,
			HolderName: fullName,
		},
	}

	existing := v.Presets(userID)
	for _, p := range existing {
		if presetIdentity(p) == presetIdentity(preset) {
			return &preset
		}
	}
	v.write(presetsKey(userID), append([]domain.CheckoutPreset{preset}, existing...))
	return &preset
}

// ApplyPreset produces checkout form values from a preset. The CVV is
// always left blank and the card number is a masked display value, never
// a real number.
func ApplyPreset(p domain.CheckoutPreset) domain.PaymentDetails {
	return domain.PaymentDetails{
		FullName:   p.FullName,
		Email:      p.Email,
		Address:    p.Address,
		City:       p.City,
		Country:    p.Country,
		CardNumber: "**** **** **** " + p.Card.Last4,
		Expiration: fmt.Sprintf("%02d/%02d", p.Card.ExpMonth, p.Card.ExpYear%100),
		CVV:        "",
	}
}

// FormatPresetLabel renders the selector label for a preset.
func FormatPresetLabel(p domain.CheckoutPreset) string {
	return fmt.Sprintf("%s • %s — %s •••• %s — %02d/%02d",
		p.FullName, p.Email, strings.ToUpper(p.Card.Brand), p.Card.Last4,
		p.Card.ExpMonth, p.Card.ExpYear%100)
}

// SaveCardInput is the raw card data for a standalone saved card.
type SaveCardInput struct {
	CardNumber string
	Expiration string
	HolderName string
}

// SaveCard stores the masked card locally unless a card with the same
// last4 and expiry already exists. Returns nil on invalid input.
func (v *Vault) SaveCard(userID string, in SaveCardInput) *domain.SavedCard {
	digits := nonDigits.ReplaceAllString(in.CardNumber, "")
	if len(digits) < 4 {
		return nil
	}
	expMonth, expYear, ok := parseExpiration(in.Expiration)
	if !ok {
		return nil
	}

	card := domain.SavedCard{
		ID:         "local-" + uuid.NewString(),
		Brand:      DetectBrand(digits),
		Last4:      digits[len(digits)-4:],
		ExpMonth:   expMonth,
		ExpYear:    expYear,
		HolderName: strings.TrimSpace(in.HolderName),
	}

	existing := v.localCards(userID)
	for _, c := range existing {
		if cardIdentity(c) == cardIdentity(card) {
			return &card
		}
	}
	v.write(cardsKey(userID), append([]domain.SavedCard{card}, existing...))
	return &card
}

// Cards merges remote-sourced cards with locally saved ones,
// de-duplicated by last4 and expiry. An unreachable or card-less backend
// degrades to local cards only.
func (v *Vault) Cards(ctx context.Context, userID string) []domain.SavedCard {
	local := v.localCards(userID)
	if v.remote == nil {
		return local
	}
	remote, err := v.remote.UserCards(ctx, userID)
	if err != nil {
		v.logf("remote cards unavailable for user %s: %v", userID, err)
		return local
	}

	seen := make(map[string]bool, len(remote))
	merged := append([]domain.SavedCard{}, remote...)
	for _, c := range remote {
		seen[cardIdentity(c)] = true
	}
	for _, c := range local {
		if !seen[cardIdentity(c)] {
			merged = append(merged, c)
		}
	}
	return merged
}

// FormatCardLabel renders the selector label for a saved card.
func FormatCardLabel(c domain.SavedCard) string {
	brand := strings.ToUpper(c.Brand)
	if brand == "" {
		brand = "CARD"
	}
	last4 := c.Last4
	if last4 == "" {
		last4 = "••••"
	}
	return fmt.Sprintf("%s •••• %s — %02d/%02d", brand, last4, c.ExpMonth, c.ExpYear%100)
}

// DetectBrand classifies a card number by its leading digits. The table
// is deliberately non-exhaustive; anything unknown is a generic "card".
func DetectBrand(digits string) string {
	switch {
	case strings.HasPrefix(digits, "4"):
		return "visa"
	case len(digits) >= 2 && digits[0] == '5' && digits[1] >= '1' && digits[1] <= '5':
		return "mastercard"
	case strings.HasPrefix(digits, "34"), strings.HasPrefix(digits, "37"):
		return "amex"
	case strings.HasPrefix(digits, "6011"), strings.HasPrefix(digits, "65"):
		return "discover"
	default:
		return "card"
	}
}

// parseExpiration accepts MM/YY or MM/YYYY, clamping the month to
// [1, 12] and widening two-digit years into the 2000s.
func parseExpiration(raw string) (month, year int, ok bool) {
	m := expiration.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, 0, false
	}
	month, _ = strconv.Atoi(m[1])
	if month < 1 {
		month = 1
	}
	if month > 12 {
		month = 12
	}
	yearRaw := m[2]
	if len(yearRaw) == 3 {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(yearRaw)
	if len(yearRaw) == 2 {
		year += 2000
	}
	return month, year, true
}

func presetIdentity(p domain.CheckoutPreset) string {
	return strings.Join([]string{
		p.FullName, p.Email, p.Address, p.City, p.Country,
		p.Card.Last4, strconv.Itoa(p.Card.ExpMonth), strconv.Itoa(p.Card.ExpYear),
	}, "-")
}

func cardIdentity(c domain.SavedCard) string {
	return fmt.Sprintf("%s-%d-%d", c.Last4, c.ExpMonth, c.ExpYear)
}

func (v *Vault) localCards(userID string) []domain.SavedCard {
	raw, ok := v.readRaw(cardsKey(userID))
	if !ok {
		return nil
	}
	var out []domain.SavedCard
	if err := json.Unmarshal(raw, &out); err != nil {
		v.logf("discarding malformed value under %s: %v", cardsKey(userID), err)
		return nil
	}
	return out
}

func (v *Vault) readRaw(key string) ([]byte, bool) {
	raw, ok, err := v.kv.Get(key)
	if err != nil {
		v.logf("failed to read %s: %v", key, err)
		return nil, false
	}
	return raw, ok
}

func (v *Vault) write(key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		v.logf("failed to serialize %s: %v", key, err)
		return
	}
	if err := v.kv.Set(key, data); err != nil {
		v.logf("failed to persist %s: %v", key, err)
	}
}

func (v *Vault) logf(format string, args ...interface{}) {
	if v.logger != nil {
		v.logger.Printf(format, args...)
	}
}
