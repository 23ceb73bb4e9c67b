package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/washlink/app/internal/api"
	"github.com/washlink/app/internal/apiclient"
	"github.com/washlink/app/internal/cart"
	"github.com/washlink/app/internal/session"
)

type scanner interface {
	Scan() bool
	Text() string
}

// app drives the terminal screens. Each screen mirrors a page of the mobile
// client: login, home catalog, order builder, order history, profile.
type app struct {
	in   scanner
	out  io.Writer
	gw   *apiclient.Client
	sess *session.Store
}

func (a *app) run(ctx context.Context) {
	for {
		if !a.sess.IsAuthenticated() {
			if !a.loginScreen(ctx) {
				return
			}
		}

		a.printf("\n== WashLink ==\n")
		a.printf("1) Browse services  2) New order  3) My orders  4) Profile  q) Quit\n")
		switch a.prompt("> ") {
		case "1":
			a.catalogScreen(ctx)
		case "2":
			a.newOrderScreen(ctx)
		case "3":
			a.ordersScreen(ctx)
		case "4":
			a.profileScreen(ctx)
		case "q":
			return
		}
	}
}

// loginScreen walks the three steps: phone, code, and (for first-time
// registrants) full name. Returns false when the user quits.
func (a *app) loginScreen(ctx context.Context) bool {
	a.printf("\n== Sign in ==\n")

	var phone string
	for {
		phone = a.prompt("Phone number (q to quit): ")
		if phone == "q" {
			return false
		}
		if !api.ValidPhone(phone) {
			a.printf("Please enter a valid Ethiopian phone number\n")
			continue
		}
		otp, err := a.gw.RequestOTP(ctx, phone)
		if err != nil {
			a.printf("%v\n", err)
			continue
		}
		if otp != "" {
			a.printf("Your code: %s\n", otp)
		} else {
			a.printf("Code sent to %s\n", phone)
		}
		break
	}

	for {
		code := a.prompt("Enter the 6-digit code (q to quit): ")
		if code == "q" {
			return false
		}
		if len(code) != 6 {
			a.printf("The code must be 6 digits\n")
			continue
		}

		err := a.sess.Login(ctx, phone, code, "")
		if err == nil {
			break
		}
		if !apiclient.IsNameRequired(err) {
			a.printf("%v\n", err)
			continue
		}

		// First registration: the same code is resubmitted with a name.
		a.printf("Please provide your full name to complete registration\n")
		for {
			name := a.prompt("Full name: ")
			if len(strings.TrimSpace(name)) < 2 {
				a.printf("Please enter a valid full name\n")
				continue
			}
			if err := a.sess.Login(ctx, phone, code, strings.TrimSpace(name)); err != nil {
				a.printf("%v\n", err)
				break
			}
			break
		}
		if a.sess.IsAuthenticated() {
			break
		}
	}

	if user, ok := a.sess.Current(); ok {
		a.printf("Welcome, %s!\n", user.FullName)
	}
	return true
}

func (a *app) catalogScreen(ctx context.Context) {
	category := a.prompt("Category (Regular/Express/Premium, empty for all): ")
	items, err := a.gw.Items(ctx, category)
	if err != nil {
		a.printf("%v\n", err)
		return
	}
	a.printItems(items, nil)
}

// newOrderScreen builds a draft with the cart and submits it.
func (a *app) newOrderScreen(ctx context.Context) {
	items, err := a.gw.Items(ctx, "")
	if err != nil {
		a.printf("%v\n", err)
		return
	}
	byID := make(map[int64]api.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	draft := cart.New()
	for {
		a.printItems(items, draft)
		a.printf("Total: %s ETB\n", draft.Total().StringFixed(2))
		line := a.prompt("+<id> add, -<id> remove, d done, q cancel: ")
		switch {
		case line == "q":
			return
		case line == "d":
		case strings.HasPrefix(line, "+"):
			if id, err := strconv.ParseInt(line[1:], 10, 64); err == nil {
				if item, ok := byID[id]; ok {
					draft.Add(item)
				}
			}
			continue
		case strings.HasPrefix(line, "-"):
			if id, err := strconv.ParseInt(line[1:], 10, 64); err == nil {
				draft.Remove(id)
			}
			continue
		default:
			continue
		}

		pickup := a.prompt("Pickup address: ")
		delivery := strings.EqualFold(a.prompt("Deliver to a different address? (y/N): "), "y")
		deliveryAddr := ""
		if delivery {
			deliveryAddr = a.prompt("Delivery address: ")
		}
		notes := a.prompt("Notes (optional): ")

		req, err := draft.BuildOrder(strings.TrimSpace(pickup), strings.TrimSpace(deliveryAddr), delivery, notes)
		if err != nil {
			a.printf("%v\n", err)
			continue
		}

		order, err := a.gw.CreateOrder(ctx, req)
		if err != nil {
			a.printf("%v\n", err)
			continue
		}
		a.printf("Order created: %s (status %s, subtotal %s ETB)\n",
			order.ID, order.Status, order.Subtotal.StringFixed(2))
		return
	}
}

func (a *app) ordersScreen(ctx context.Context) {
	orders, err := a.gw.MyOrders(ctx, 0, 100)
	if err != nil {
		a.printf("%v\n", err)
		return
	}
	if len(orders) == 0 {
		a.printf("No orders yet\n")
		return
	}

	for _, order := range orders {
		a.printf("%s  %-11s  %d item(s)  %s ETB  %s\n",
			order.CreatedAt.Format("2006-01-02 15:04"), order.Status,
			len(order.Items), order.Subtotal.StringFixed(2), order.ID)
	}

	id := a.prompt("Order ID for details (empty to go back): ")
	if id == "" {
		return
	}
	order, err := a.gw.Order(ctx, id)
	if err != nil {
		a.printf("%v\n", err)
		return
	}
	a.printf("Status: %s\nPickup: %s\nDelivery: %s\n", order.Status, order.PickupAddress, order.DeliveryAddress)
	for _, item := range order.Items {
		a.printf("  %dx %-24s %s ETB\n", item.Quantity, item.ServiceType, item.Price.StringFixed(2))
	}
	if order.Delivery {
		a.printf("Delivery charge: %s ETB\n", order.DeliveryCharge.StringFixed(2))
	}
	a.printf("Subtotal: %s ETB\n", order.Subtotal.StringFixed(2))
}

func (a *app) profileScreen(ctx context.Context) {
	user, ok := a.sess.Current()
	if !ok {
		return
	}
	a.printf("Name:  %s\nPhone: %s\nRole:  %s\n", user.FullName, user.Phone, user.Role)

	switch a.prompt("r) Refresh  l) Log out  other) back: ") {
	case "r":
		a.sess.Refresh(ctx)
		if user, ok := a.sess.Current(); ok {
			a.printf("Refreshed: %s\n", user.FullName)
		}
	case "l":
		a.sess.Logout(ctx)
		a.printf("Logged out\n")
	}
}

func (a *app) printItems(items []api.Item, draft *cart.Cart) {
	for _, item := range items {
		qty := ""
		if draft != nil {
			if n := draft.QuantityOf(item.ID); n > 0 {
				qty = fmt.Sprintf("  x%d", n)
			}
		}
		a.printf("%2d) %-24s %-8s %7s ETB  %s%s\n",
			item.ID, item.Name, item.Category, item.Price.StringFixed(2), item.EstimatedTime, qty)
	}
}

func (a *app) prompt(label string) string {
	fmt.Fprint(a.out, label)
	if !a.in.Scan() {
		return "q"
	}
	return strings.TrimSpace(a.in.Text())
}

func (a *app) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}
