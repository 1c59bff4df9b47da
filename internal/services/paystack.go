package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/techfix-ai/techfix-backend/internal/utils"
)

// PlanTier maps a purchasable plan to its session length and price.
// Amounts are in the gateway's minor unit.
type PlanTier struct {
	Minutes int
	Amount  int
}

var planTiers = map[string]PlanTier{
	"basic":    {Minutes: 30, Amount: 500},
	"standard": {Minutes: 60, Amount: 900},
	"pro":      {Minutes: 240, Amount: 2500},
}

// LookupPlanTier resolves a tier name, case-insensitively.
func LookupPlanTier(name string) (PlanTier, bool) {
	tier, ok := planTiers[strings.ToLower(strings.TrimSpace(name))]
	return tier, ok
}

// PaystackService initializes and verifies hosted checkout
// transactions.
type PaystackService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewPaystackService creates a new payment gateway client
func NewPaystackService(baseURL, apiKey string) *PaystackService {
	return &PaystackService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Checkout is a freshly initialized hosted checkout.
type Checkout struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	Amount           int    `json:"amount"`
	Tier             string `json:"tier"`
}

// VerifiedTransaction is the outcome of a verification call.
type VerifiedTransaction struct {
	Reference string
	Status    string
	Email     string
	Tier      string
	Amount    int
}

type paystackInitReq struct {
	Email     string `json:"email"`
	Amount    int    `json:"amount"`
	Reference string `json:"reference"`
	Metadata  struct {
		Plan string `json:"plan"`
	} `json:"metadata"`
}

type paystackInitResp struct {
	Status bool   `json:"status"`
	Msg    string `json:"message"`
	Data   struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type paystackVerifyResp struct {
	Status bool   `json:"status"`
	Msg    string `json:"message"`
	Data   struct {
		Status   string `json:"status"`
		Amount   int    `json:"amount"`
		Customer struct {
			Email string `json:"email"`
		} `json:"customer"`
		Metadata struct {
			Plan string `json:"plan"`
		} `json:"metadata"`
	} `json:"data"`
}

// InitializeCheckout creates a hosted checkout for the given tier with
// a uniquely generated reference.
func (p *PaystackService) InitializeCheckout(email, tierName string) (*Checkout, error) {
	tier, ok := LookupPlanTier(tierName)
	if !ok {
		return nil, fmt.Errorf("unknown plan tier: %s", tierName)
	}

	reqBody := paystackInitReq{
		Email:     email,
		Amount:    tier.Amount,
		Reference: utils.GeneratePaymentReference(),
	}
	reqBody.Metadata.Plan = strings.ToLower(strings.TrimSpace(tierName))

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, p.baseURL+"/transaction/initialize", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paystack initialize failed: status %d", resp.StatusCode)
	}

	var decoded paystackInitResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("paystack: %v", err)
	}
	if !decoded.Status {
		return nil, fmt.Errorf("paystack initialize failed: %s", decoded.Msg)
	}

	return &Checkout{
		Reference:        decoded.Data.Reference,
		AuthorizationURL: decoded.Data.AuthorizationURL,
		Amount:           tier.Amount,
		Tier:             reqBody.Metadata.Plan,
	}, nil
}

// VerifyTransaction confirms the completion status of a checkout by
// its reference.
func (p *PaystackService) VerifyTransaction(reference string) (*VerifiedTransaction, error) {
	req, err := http.NewRequest(http.MethodGet, p.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paystack verify failed: status %d", resp.StatusCode)
	}

	var decoded paystackVerifyResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("paystack: %v", err)
	}
	if !decoded.Status {
		return nil, fmt.Errorf("paystack verify failed: %s", decoded.Msg)
	}

	return &VerifiedTransaction{
		Reference: reference,
		Status:    decoded.Data.Status,
		Email:     decoded.Data.Customer.Email,
		Tier:      decoded.Data.Metadata.Plan,
		Amount:    decoded.Data.Amount,
	}, nil
}
