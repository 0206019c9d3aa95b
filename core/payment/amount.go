package payment

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// sessionPlaceholder is substituted by Stripe with the session id on
// redirect, so it must reach Stripe unescaped.
const sessionPlaceholder = "{CHECKOUT_SESSION_ID}"

var hundred = decimal.NewFromInt(100)

// MinorUnits converts an amount to cents, rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

type Param struct {
	Key   string
	Value string
}

// AppendQuery adds the params with a non-blank value to the query string of
// base, keeping any fragment at the end. A blank base is returned as is.
func AppendQuery(base string, params ...Param) string {
	if strings.TrimSpace(base) == "" {
		return base
	}

	var q strings.Builder
	for _, p := range params {
		if strings.TrimSpace(p.Value) == "" {
			continue
		}
		if q.Len() > 0 {
			q.WriteByte('&')
		}
		q.WriteString(url.QueryEscape(p.Key))
		q.WriteByte('=')
		if p.Value == sessionPlaceholder {
			q.WriteString(p.Value)
		} else {
			q.WriteString(url.QueryEscape(p.Value))
		}
	}

	if q.Len() == 0 {
		return base
	}

	u, frag, hasFrag := strings.Cut(base, "#")

	switch {
	case !strings.Contains(u, "?"):
		u += "?"
	case !strings.HasSuffix(u, "?") && !strings.HasSuffix(u, "&"):
		u += "&"
	}
	u += q.String()

	if hasFrag {
		u += "#" + frag
	}
	return u
}
