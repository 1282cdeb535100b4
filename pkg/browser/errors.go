package browser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownInstance reports a command addressed to an instance id that is
// not present in the store. The dispatcher issues no network call for it.
var ErrUnknownInstance = errors.New("browser instance not found")

// RemoteError is a non-success HTTP status from the browser API, carrying
// the server-reported message when one was present.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("browser api error [%d]: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("browser api error [%d]", e.Status)
}

// PaymentNetwork is one accepted (network, address) payment pair.
type PaymentNetwork struct {
	Network string `json:"network"`
	Address string `json:"address"`
	Token   string `json:"token"`
}

// PaymentRequiredError reports the x402 payment precondition on session
// creation. It carries the full remote payment payload; it is recoverable
// by caller action (pay, then retry with the transaction hash) and is only
// raised from Create.
type PaymentRequiredError struct {
	Info map[string]any
}

func (e *PaymentRequiredError) Error() string {
	networks := e.Networks()
	addrs := make([]string, 0, len(networks))
	for _, n := range networks {
		addrs = append(addrs, fmt.Sprintf("%s: %s", n.Network, n.Address))
	}
	return fmt.Sprintf("payment required: $%.3f USDC. Send to: %s",
		e.PriceUSD(), strings.Join(addrs, ", "))
}

// PriceUSD normalizes the heterogeneous remote price encoding into a
// decimal USD amount. A bare number greater than 1000 is micro-denominated
// and divided by 1,000,000; a structured amount object contributes its
// "amount" field; anything else is already decimal. The rule must match
// the remote API's encodings exactly.
func (e *PaymentRequiredError) PriceUSD() float64 {
	if e == nil || e.Info == nil {
		return 0
	}
	return normalizePriceUSD(e.Info["price"])
}

// Networks returns the accepted payment networks from the payload.
func (e *PaymentRequiredError) Networks() []PaymentNetwork {
	if e == nil || e.Info == nil {
		return nil
	}
	raw, ok := e.Info["networks"].([]any)
	if !ok {
		return nil
	}
	out := make([]PaymentNetwork, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		network := PaymentNetwork{Token: "USDC"}
		if s, ok := entry["network"].(string); ok {
			network.Network = s
		}
		if s, ok := entry["address"].(string); ok {
			network.Address = s
		}
		if s, ok := entry["token"].(string); ok && s != "" {
			network.Token = s
		}
		out = append(out, network)
	}
	return out
}

func normalizePriceUSD(price any) float64 {
	switch v := price.(type) {
	case float64:
		if v > 1000 {
			return v / 1_000_000
		}
		return v
	case int:
		if v > 1000 {
			return float64(v) / 1_000_000
		}
		return float64(v)
	case int64:
		if v > 1000 {
			return float64(v) / 1_000_000
		}
		return float64(v)
	case map[string]any:
		return parsePriceValue(v["amount"])
	default:
		return parsePriceValue(price)
	}
}

func parsePriceValue(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
