package recap

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/duitapp/ledger/internal/model"
)

// Digest is one user's daily recap, fully derived at build time. Render
// is a fixed template over these fields: same figures, same text.
type Digest struct {
	Date           time.Time
	TodayIncome    float64
	TodayExpense   float64
	DailyAllowance float64
	Surplus        float64
	IdleCash       bool
	CashBurn       bool
	Reminders      []*model.ScheduledMessage
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (d *Digest) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Recap for %s\n", d.Date.Format("Mon, 2 Jan 2006"))
	fmt.Fprintf(&b, "Income today: %s\n", formatMoney(d.TodayIncome))
	fmt.Fprintf(&b, "Spent today: %s\n", formatMoney(d.TodayExpense))
	fmt.Fprintf(&b, "Daily allowance: %s\n", formatMoney(d.DailyAllowance))

	if d.Surplus >= 0 {
		fmt.Fprintf(&b, "You are %s under your allowance.\n", formatMoney(d.Surplus))
	} else {
		fmt.Fprintf(&b, "You are %s over your allowance.\n", formatMoney(-d.Surplus))
	}

	if d.IdleCash {
		b.WriteString("You have idle cash sitting around. Consider moving some into a goal or investment.\n")
	}
	if d.CashBurn {
		b.WriteString("Heavy cash spending today. Cash is hard to track, try to keep receipts.\n")
	}

	if len(d.Reminders) > 0 {
		b.WriteString("Reminders:\n")
		for _, r := range d.Reminders {
			fmt.Fprintf(&b, "- %s\n", r.Payload)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
