package builtin

import (
	"fmt"
	"math"

	"github.com/veilhq/veil/pkg/browser"
)

// paymentGuidance renders a payment-required outcome as structured
// next-step instructions instead of a hard failure: price, accepted
// networks and addresses, and how to retry.
func paymentGuidance(perr *browser.PaymentRequiredError) *Result {
	price := math.Round(perr.PriceUSD()*10000) / 10000
	networks := make([]map[string]any, 0)
	for _, n := range perr.Networks() {
		networks = append(networks, map[string]any{
			"network": n.Network,
			"address": n.Address,
			"token":   n.Token,
		})
	}
	return &Result{
		Success: true,
		Data: map[string]any{
			"status":     "payment_required",
			"price_usdc": price,
			"message": fmt.Sprintf(
				"Send $%.4f USDC to one of the addresses below, then retry with the tx hash as payment_signature.",
				perr.PriceUSD()),
			"networks": networks,
			"instructions": []string{
				"1. Send the exact USDC amount to one of the wallet addresses above.",
				"2. Wait for the transaction to confirm (~2s Base, ~400ms Solana).",
				"3. Call spawn_browser again with payment_signature set to the tx hash.",
			},
		},
	}
}
