package devserver_test

import (
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/washlink/app/internal/api"
	"github.com/washlink/app/internal/apiclient"
	"github.com/washlink/app/internal/cart"
	"github.com/washlink/app/internal/credstore"
	"github.com/washlink/app/internal/devserver"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// setup starts an in-memory server and returns a real client pointed at it,
// so the wire contract is exercised end to end.
func setup(t *testing.T) (*apiclient.Client, *credstore.Store) {
	t.Helper()
	srv := devserver.New("test-secret", quietLogger())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	creds := credstore.New(filepath.Join(t.TempDir(), "credentials.json"))
	return apiclient.New(ts.URL+"/api/v1", creds, quietLogger()), creds
}

func register(t *testing.T, client *apiclient.Client, phone, name string) *api.AuthResponse {
	t.Helper()
	ctx := context.Background()

	code, err := client.RequestOTP(ctx, phone)
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}
	resp, err := client.VerifyOTP(ctx, phone, code, name)
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	return resp
}

func TestRequestOTPRejectsBadPhone(t *testing.T) {
	client, _ := setup(t)

	_, err := client.RequestOTP(context.Background(), "12345")
	if err == nil {
		t.Fatal("expected error for invalid phone")
	}
	if err.Error() != "Invalid phone number" {
		t.Errorf("error: got %q", err.Error())
	}
}

func TestFirstRegistrationRequiresName(t *testing.T) {
	client, _ := setup(t)
	ctx := context.Background()

	code, err := client.RequestOTP(ctx, "0912345678")
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}

	_, err = client.VerifyOTP(ctx, "0912345678", code, "")
	if err == nil {
		t.Fatal("expected name-required rejection")
	}
	if !apiclient.IsNameRequired(err) {
		t.Errorf("rejection not recognized as name-required: %q", err.Error())
	}

	// Same code resubmitted with a name completes registration.
	resp, err := client.VerifyOTP(ctx, "0912345678", code, "Abebe Bikila")
	if err != nil {
		t.Fatalf("verify with name: %v", err)
	}
	if resp.User.FullName != "Abebe Bikila" || resp.User.Role != api.RoleCustomer {
		t.Errorf("registered user: %+v", resp.User)
	}
	if resp.AccessToken == "" {
		t.Error("no access token returned")
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	client, _ := setup(t)
	ctx := context.Background()

	if _, err := client.RequestOTP(ctx, "0912345678"); err != nil {
		t.Fatalf("request otp: %v", err)
	}

	_, err := client.VerifyOTP(ctx, "0912345678", "000000", "Abebe Bikila")
	if err == nil {
		t.Fatal("expected error for wrong code")
	}
	if apiclient.IsNameRequired(err) {
		t.Error("wrong-code failure misread as name-required")
	}
}

func TestOTPIsSingleUse(t *testing.T) {
	client, creds := setup(t)
	ctx := context.Background()

	code, err := client.RequestOTP(ctx, "0912345678")
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}
	if _, err := client.VerifyOTP(ctx, "0912345678", code, "Abebe Bikila"); err != nil {
		t.Fatalf("first verify: %v", err)
	}

	if err := creds.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := client.VerifyOTP(ctx, "0912345678", code, ""); err == nil {
		t.Fatal("reused code accepted")
	}
}

func TestCurrentUserRoundTrip(t *testing.T) {
	client, _ := setup(t)
	want := register(t, client, "0912345678", "Abebe Bikila").User

	got, err := client.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if *got != want {
		t.Errorf("identity: got %+v, want %+v", *got, want)
	}
}

func TestItemsFilterByCategory(t *testing.T) {
	client, _ := setup(t)
	ctx := context.Background()

	all, err := client.Items(ctx, "")
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(all) == 0 {
		t.Fatal("empty catalog")
	}

	express, err := client.Items(ctx, api.CategoryExpress)
	if err != nil {
		t.Fatalf("items filtered: %v", err)
	}
	if len(express) == 0 || len(express) >= len(all) {
		t.Fatalf("filter returned %d of %d items", len(express), len(all))
	}
	for _, item := range express {
		if item.Category != api.CategoryExpress {
			t.Errorf("item %d has category %q", item.ID, item.Category)
		}
	}
}

func TestCreateOrderFlow(t *testing.T) {
	client, _ := setup(t)
	register(t, client, "0912345678", "Abebe Bikila")
	ctx := context.Background()

	items, err := client.Items(ctx, "")
	if err != nil {
		t.Fatalf("items: %v", err)
	}

	draft := cart.New()
	draft.Add(items[0])
	draft.Add(items[0])
	draft.Add(items[1])

	req, err := draft.BuildOrder("Bole Road 12", "Kazanchis 4", true, "ring twice")
	if err != nil {
		t.Fatalf("build order: %v", err)
	}

	order, err := client.CreateOrder(ctx, req)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if order.Status != api.OrderStatusPending {
		t.Errorf("status: got %q, want %q", order.Status, api.OrderStatusPending)
	}
	wantSubtotal := items[0].Price.Mul(decimal.NewFromInt(2)).Add(items[1].Price)
	if !order.Subtotal.Equal(wantSubtotal) {
		t.Errorf("subtotal: got %s, want %s", order.Subtotal, wantSubtotal)
	}
	if !draft.Total().Equal(wantSubtotal) {
		t.Errorf("draft total %s disagrees with server subtotal %s", draft.Total(), wantSubtotal)
	}
	if !order.Delivery || order.DeliveryCharge.IsZero() {
		t.Errorf("delivery: %v charge %s", order.Delivery, order.DeliveryCharge)
	}
	if len(order.Items) != 2 {
		t.Fatalf("order lines: got %d, want 2", len(order.Items))
	}

	// The order shows up in history and by direct fetch.
	orders, err := client.MyOrders(ctx, 0, 100)
	if err != nil {
		t.Fatalf("my orders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != order.ID {
		t.Fatalf("order history: %+v", orders)
	}

	fetched, err := client.Order(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if fetched.ID != order.ID || !fetched.Subtotal.Equal(order.Subtotal) {
		t.Errorf("fetched order differs: %+v", fetched)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	client, _ := setup(t)
	register(t, client, "0912345678", "Abebe Bikila")

	_, err := client.CreateOrder(context.Background(), api.CreateOrderRequest{
		PickupAddress: "",
		Items:         []api.OrderItem{{ProductID: 1, Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if err.Error() != "Pickup address is required" {
		t.Errorf("error: got %q", err.Error())
	}
}

func TestOrdersAreOwnerScoped(t *testing.T) {
	client, creds := setup(t)
	register(t, client, "0912345678", "Abebe Bikila")
	ctx := context.Background()

	items, err := client.Items(ctx, "")
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	draft := cart.New()
	draft.Add(items[0])
	req, err := draft.BuildOrder("Bole Road 12", "", false, "")
	if err != nil {
		t.Fatalf("build order: %v", err)
	}
	order, err := client.CreateOrder(ctx, req)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// Second user must not see the first user's order.
	if err := creds.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	register(t, client, "0712345678", "Birtukan Mideksa")

	if _, err := client.Order(ctx, order.ID); err == nil {
		t.Fatal("foreign order readable")
	}
	orders, err := client.MyOrders(ctx, 0, 100)
	if err != nil {
		t.Fatalf("my orders: %v", err)
	}
	if len(orders) != 0 {
		t.Errorf("foreign orders in history: %+v", orders)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	client, creds := setup(t)
	register(t, client, "0912345678", "Abebe Bikila")
	ctx := context.Background()

	// Keep a copy: Logout clears the store.
	stored, ok, err := creds.Load()
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}

	if err := client.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok, _ := creds.Load(); ok {
		t.Error("credentials survived logout")
	}

	// The revoked token must be rejected from now on.
	if err := creds.Save(stored); err != nil {
		t.Fatalf("restore token: %v", err)
	}
	notified := false
	client.OnUnauthorized(func() { notified = true })

	if _, err := client.CurrentUser(ctx); err == nil {
		t.Fatal("revoked token accepted")
	}
	if !notified {
		t.Error("401 did not fire the unauthorized callback")
	}
	if _, ok, _ := creds.Load(); ok {
		t.Error("credentials survived the 401 teardown")
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	client, _ := setup(t)

	if _, err := client.CurrentUser(context.Background()); err == nil {
		t.Fatal("unauthenticated /users/me succeeded")
	}
	if _, err := client.MyOrders(context.Background(), 0, 100); err == nil {
		t.Fatal("unauthenticated order list succeeded")
	}
}
