// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/taibuivan/edura/internal/cart"
	"github.com/taibuivan/edura/internal/payment"
)

const dateLayout = "2006-01-02"

func runCart(ctx context.Context, cli *cli, _ []string) error {
	checkout, err := cli.app.API.Cart.Reconcile(ctx, cli.app.Formatter.Unit())
	if err != nil {
		return err
	}
	return printCheckout(cli, checkout)
}

func printCheckout(cli *cli, checkout cart.Checkout) error {
	for _, item := range checkout.Owned {
		fmt.Fprintf(cli.out, "Already owned, will be removed at checkout: %s\n", item.Title)
	}
	if checkout.IsEmpty() {
		fmt.Fprintln(cli.out, "Your cart is empty.")
		return nil
	}

	format := cli.app.Formatter.Format
	table := cli.table()
	fmt.Fprintln(table, "ID\tCOURSE\tPRICE\tYOU PAY")
	for _, item := range checkout.Items {
		fmt.Fprintf(table, "%d\t%s\t%s\t%s\n", item.CourseID, item.Title, format(item.Price), format(item.Contribution()))
	}
	if err := table.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(cli.out)
	if checkout.Savings > 0 {
		fmt.Fprintf(cli.out, "Savings: %s\n", format(checkout.Savings))
	}
	fmt.Fprintf(cli.out, "Total:   %s\n", format(checkout.Total))
	return nil
}

func runCartAdd(ctx context.Context, cli *cli, args []string) error {
	set := flags("cart-add")
	courseID := set.Int64("course", 0, "course id")
	if err := set.Parse(args); err != nil {
		return err
	}
	if err := requireID("course", *courseID); err != nil {
		return err
	}

	current, err := cli.app.API.Cart.Add(ctx, *courseID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "Added. %d course(s) in cart, %s.\n", len(current.Items), cli.app.Formatter.Format(current.Total(cli.app.Formatter.Unit())))
	return nil
}

func runCartRemove(ctx context.Context, cli *cli, args []string) error {
	set := flags("cart-remove")
	courseID := set.Int64("course", 0, "course id")
	if err := set.Parse(args); err != nil {
		return err
	}
	if err := requireID("course", *courseID); err != nil {
		return err
	}

	if err := cli.app.API.Cart.Remove(ctx, *courseID); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Removed.")
	return nil
}

func runCartClear(ctx context.Context, cli *cli, _ []string) error {
	if err := cli.app.API.Cart.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Cart cleared.")
	return nil
}

func runCheckout(ctx context.Context, cli *cli, args []string) error {
	set := flags("checkout")
	method := set.String("method", string(payment.MethodVNPay), "vnpay, momo or bank_transfer")
	if err := set.Parse(args); err != nil {
		return err
	}

	checkout, err := cli.app.API.Cart.Reconcile(ctx, cli.app.Formatter.Unit())
	if err != nil {
		return err
	}

	// Owned lines are never paid for twice.
	for _, item := range checkout.Owned {
		if err := cli.app.API.Cart.Remove(ctx, item.CourseID); err != nil {
			return err
		}
	}
	if err := printCheckout(cli, checkout); err != nil || checkout.IsEmpty() {
		return err
	}

	result, err := cli.app.API.Payments.Checkout(ctx, payment.Method(*method))
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "\nPayment #%d is %s. Complete it at:\n%s\n", result.Payment.ID, result.Payment.Status, result.PaymentURL)
	return nil
}

func runEnrollments(ctx context.Context, cli *cli, _ []string) error {
	enrollments, err := cli.app.API.Enrollments.List(ctx)
	if err != nil {
		return err
	}
	if len(enrollments) == 0 {
		fmt.Fprintln(cli.out, "You have not enrolled in any course yet.")
		return nil
	}

	table := cli.table()
	fmt.Fprintln(table, "COURSE\tTITLE\tENROLLED")
	for _, enrollment := range enrollments {
		title := ""
		if enrollment.Course != nil {
			title = enrollment.Course.Title
		}
		fmt.Fprintf(table, "%d\t%s\t%s\n", enrollment.CourseID, title, enrollment.EnrolledAt.Format(dateLayout))
	}
	return table.Flush()
}

func runPayments(ctx context.Context, cli *cli, _ []string) error {
	payments, err := cli.app.API.Payments.List(ctx)
	if err != nil {
		return err
	}
	if len(payments) == 0 {
		fmt.Fprintln(cli.out, "No payments.")
		return nil
	}

	table := cli.table()
	fmt.Fprintln(table, "ID\tUSER\tAMOUNT\tMETHOD\tSTATUS\tCREATED")
	for _, entry := range payments {
		fmt.Fprintf(table, "%d\t%s\t%s\t%s\t%s\t%s\n",
			entry.ID, entry.UserEmail, cli.app.Formatter.Format(entry.Amount),
			entry.Method, entry.Status, entry.CreatedAt.Format(dateLayout),
		)
	}
	return table.Flush()
}

func runPaymentStatus(ctx context.Context, cli *cli, args []string) error {
	set := flags("payment-status")
	id := set.Int64("id", 0, "payment id")
	status := set.String("status", "", "pending, success or failed")
	transactionID := set.String("transaction", "", "gateway transaction id")
	if err := set.Parse(args); err != nil {
		return err
	}
	if err := requireID("id", *id); err != nil {
		return err
	}

	updated, err := cli.app.API.Payments.UpdateStatus(ctx, *id, payment.StatusUpdate{
		Status:        payment.Status(strings.ToLower(*status)),
		TransactionID: *transactionID,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "Payment #%d is now %s.\n", updated.ID, updated.Status)
	return nil
}

func runStats(ctx context.Context, cli *cli, _ []string) error {
	stats, err := cli.app.API.Payments.Stats(ctx)
	if err != nil {
		return err
	}

	format := cli.app.Formatter.Format
	fmt.Fprintf(cli.out, "Revenue: %s\n", format(stats.TotalRevenue))
	fmt.Fprintf(cli.out, "Payments: %d success, %d pending, %d failed\n\n",
		stats.ByStatus[payment.StatusSuccess], stats.ByStatus[payment.StatusPending], stats.ByStatus[payment.StatusFailed])

	table := cli.table()
	fmt.Fprintln(table, "MONTH\tREVENUE\tPAYMENTS")
	for _, month := range stats.Monthly {
		fmt.Fprintf(table, "%s\t%s\t%d\n", month.Month, format(month.Revenue), month.Count)
	}
	return table.Flush()
}
