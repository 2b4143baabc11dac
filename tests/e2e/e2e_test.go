//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pricewell/pricewell/internal/auth"
	"github.com/pricewell/pricewell/internal/model"
	"github.com/pricewell/pricewell/internal/repository"
)

type productResponse struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type planResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	PriceCents int64  `json:"price_cents"`
}

type pricingResponse struct {
	Product productResponse `json:"product"`
	Plans   []struct {
		PlanID              string `json:"plan_id"`
		ListPriceCents      int64  `json:"list_price_cents"`
		EffectivePriceCents int64  `json:"effective_price_cents"`
	} `json:"plans"`
	UserID *string `json:"user_id"`
}

type subscriptionStatusResponse struct {
	Product      productResponse `json:"product"`
	Subscription *struct {
		ID     string `json:"id"`
		PlanID string `json:"plan_id"`
		Status string `json:"status"`
	} `json:"subscription"`
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("PRICEWELL_BASE_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}

	userID := fmt.Sprintf("e2e-user-%d", time.Now().UnixNano())
	adminToken := mintToken(t, dbURL, "e2e-admin", []string{model.ScopeAdmin})
	userToken := mintToken(t, dbURL, userID, []string{model.ScopeSubscribe})

	// Admin builds a catalog
	slug := fmt.Sprintf("e2e-%d", time.Now().UnixNano())
	product := createProduct(t, baseURL, adminToken, slug)
	basic := createPlan(t, baseURL, adminToken, product.ID, "Basic", 900)
	pro := createPlan(t, baseURL, adminToken, product.ID, "Pro", 2900)

	// Anonymous pricing shows list prices
	anon := getPricing(t, baseURL, "", slug)
	if len(anon.Plans) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(anon.Plans))
	}
	for _, p := range anon.Plans {
		if p.EffectivePriceCents != p.ListPriceCents {
			t.Fatalf("anonymous pricing should equal list price, got %d vs %d",
				p.EffectivePriceCents, p.ListPriceCents)
		}
	}

	// A user-scoped override discounts the Pro plan for this user only
	createOverride(t, baseURL, adminToken, product.ID, userID, pro.ID, 1900)

	personal := getPricing(t, baseURL, userToken, slug)
	assertPlanPrice(t, personal, pro.ID, 1900)
	assertPlanPrice(t, personal, basic.ID, 900)

	// Anonymous pricing is unaffected
	anonAfter := getPricing(t, baseURL, "", slug)
	assertPlanPrice(t, anonAfter, pro.ID, 2900)

	// Subscribe, then switch plans; the subscription is replaced
	subscribe(t, baseURL, userToken, product.ID, basic.ID)
	status := getSubscription(t, baseURL, userToken, slug)
	if status.Subscription == nil || status.Subscription.PlanID != basic.ID {
		t.Fatalf("expected active subscription on basic plan, got %+v", status.Subscription)
	}

	subscribe(t, baseURL, userToken, product.ID, pro.ID)
	status = getSubscription(t, baseURL, userToken, slug)
	if status.Subscription == nil || status.Subscription.PlanID != pro.ID {
		t.Fatalf("expected subscription replaced with pro plan, got %+v", status.Subscription)
	}
	if status.Subscription.Status != "active" {
		t.Fatalf("expected active status, got %q", status.Subscription.Status)
	}
}

func TestE2EScopeEnforcement(t *testing.T) {
	baseURL := envOrDefault("PRICEWELL_BASE_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}

	subscriberToken := mintToken(t, dbURL, "e2e-subscriber", []string{model.ScopeSubscribe})

	payload := map[string]any{
		"slug": fmt.Sprintf("forbidden-%d", time.Now().UnixNano()),
		"name": "Should Not Exist",
	}

	var out map[string]any
	status := doJSON(t, http.MethodPost, baseURL+"/admin/products", subscriberToken, payload, &out)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for subscribe-scope token on admin route, got %d", status)
	}
}

func TestE2ENoSecretsInResponses(t *testing.T) {
	baseURL := envOrDefault("PRICEWELL_BASE_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}

	adminToken := mintToken(t, dbURL, "e2e-secrets", []string{model.ScopeAdmin})

	client := &http.Client{Timeout: 10 * time.Second}

	// A rejected fake token must never be echoed back
	fakeToken := "pt_live_abc123_" + strings.Repeat("f", 32)
	req, err := http.NewRequest(http.MethodGet, baseURL+"/public/subscription/anything", nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+fakeToken)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if strings.Contains(string(body), fakeToken) {
		t.Error("SECURITY: Error response leaked Authorization header value")
	}

	// Valid tokens must never appear in successful responses either
	req2, err := http.NewRequest(http.MethodGet, baseURL+"/public/subscription/anything", nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req2.Header.Set("Authorization", "Bearer "+adminToken)

	resp2, err := client.Do(req2)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body2, _ := io.ReadAll(resp2.Body)
	resp2.Body.Close()

	if strings.Contains(string(body2), adminToken) {
		t.Error("SECURITY: Response echoed back the identity token")
	}
}

// ============================================================================
// Helpers
// ============================================================================

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func mintToken(t *testing.T, dbURL, userID string, scopes []string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer repo.Close()

	generated, err := auth.GenerateToken(auth.EnvLive)
	if err != nil {
		t.Fatalf("generate identity token: %v", err)
	}

	token := &model.IdentityToken{
		ID:          ulid.Make().String(),
		UserID:      userID,
		TokenHash:   generated.Hash,
		TokenPrefix: generated.Prefix,
		Scopes:      scopes,
		Name:        "e2e",
		CreatedAt:   time.Now().UTC(),
	}
	if err := repo.CreateIdentityToken(ctx, token); err != nil {
		t.Fatalf("create identity token: %v", err)
	}

	return generated.Plaintext
}

func createProduct(t *testing.T, baseURL, token, slug string) productResponse {
	t.Helper()

	payload := map[string]any{
		"slug": slug,
		"name": "E2E Product",
	}

	var resp productResponse
	status := doJSON(t, http.MethodPost, baseURL+"/admin/products", token, payload, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from product create, got %d", status)
	}
	if resp.ID == "" || resp.Slug != slug {
		t.Fatalf("product create response missing fields: %+v", resp)
	}
	return resp
}

func createPlan(t *testing.T, baseURL, token, productID, name string, priceCents int64) planResponse {
	t.Helper()

	payload := map[string]any{
		"product_id":     productID,
		"name":           name,
		"price_cents":    priceCents,
		"billing_period": "monthly",
	}

	var resp planResponse
	status := doJSON(t, http.MethodPost, baseURL+"/admin/plans", token, payload, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from plan create, got %d", status)
	}
	if resp.ID == "" {
		t.Fatalf("plan create response missing id")
	}
	return resp
}

func createOverride(t *testing.T, baseURL, token, productID, userID, planID string, priceCents int64) {
	t.Helper()

	payload := map[string]any{
		"product_id":           productID,
		"user_id":              userID,
		"plan_id":              planID,
		"override_price_cents": priceCents,
		"reason":               "e2e discount",
	}

	var resp map[string]any
	status := doJSON(t, http.MethodPost, baseURL+"/admin/overrides", token, payload, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from override create, got %d", status)
	}
}

func getPricing(t *testing.T, baseURL, token, slug string) pricingResponse {
	t.Helper()

	var resp pricingResponse
	status := doJSON(t, http.MethodGet, baseURL+"/public/pricing/"+slug, token, nil, &resp)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from pricing, got %d", status)
	}
	return resp
}

func assertPlanPrice(t *testing.T, pricing pricingResponse, planID string, wantCents int64) {
	t.Helper()
	for _, p := range pricing.Plans {
		if p.PlanID == planID {
			if p.EffectivePriceCents != wantCents {
				t.Fatalf("plan %s: expected effective price %d, got %d",
					planID, wantCents, p.EffectivePriceCents)
			}
			return
		}
	}
	t.Fatalf("plan %s not found in pricing response", planID)
}

func subscribe(t *testing.T, baseURL, token, productID, planID string) {
	t.Helper()

	payload := map[string]any{
		"product_id": productID,
		"plan_id":    planID,
	}

	var resp map[string]any
	status := doJSON(t, http.MethodPost, baseURL+"/public/subscribe", token, payload, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from subscribe, got %d", status)
	}
}

func getSubscription(t *testing.T, baseURL, token, slug string) subscriptionStatusResponse {
	t.Helper()

	var resp subscriptionStatusResponse
	status := doJSON(t, http.MethodGet, baseURL+"/public/subscription/"+slug, token, nil, &resp)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from subscription status, got %d", status)
	}
	return resp
}

func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()

	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		buf = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && resp.ContentLength != 0 {
			t.Fatalf("decode response: %v", err)
		}
	}

	return resp.StatusCode
}
