package payment

import (
	"strconv"
	"strings"
	"time"
)

var InstructionMap = map[string][]string{
	GatewayVNPay: {
		"Mở ứng dụng ngân hàng có hỗ trợ VNPAY-QR",
		"Chọn Quét mã QR và quét mã thanh toán",
		"Kiểm tra số tiền {{amount}} và mã đơn {{reference}}",
		"Xác nhận thanh toán trước {{expires_at}}",
	},
	GatewayMoMo: {
		"Mở ứng dụng MoMo",
		"Chọn Quét mã và quét mã thanh toán",
		"Kiểm tra số tiền {{amount}} và mã đơn {{reference}}",
		"Xác nhận thanh toán trước {{expires_at}}",
	},
	GatewayZaloPay: {
		"Mở ứng dụng ZaloPay",
		"Chọn Quét QR và quét mã thanh toán",
		"Kiểm tra số tiền {{amount}} và mã đơn {{reference}}",
		"Xác nhận thanh toán trước {{expires_at}}",
	},
}

func GetInstructions(gateway string) []string {
	if steps, ok := InstructionMap[gateway]; ok {
		return steps
	}

	return []string{
		"Quét mã QR bằng ứng dụng thanh toán",
		"Kiểm tra số tiền {{amount}} trước khi xác nhận",
	}
}

type InstructionVars map[string]string

func InjectVariables(steps []string, vars InstructionVars) []string {
	result := make([]string, 0, len(steps))

	for _, step := range steps {
		updated := step
		for key, value := range vars {
			updated = strings.ReplaceAll(updated, "{{"+key+"}}", value)
		}
		result = append(result, updated)
	}

	return result
}

// FormatVND renders 500000 as "500.000 ₫".
func FormatVND(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}

	var b strings.Builder
	b.WriteString(sign)
	for i := range len(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(digits[i])
	}
	b.WriteString(" ₫")
	return b.String()
}

// Instructions renders the steps shown next to the QR code, with times in loc.
func Instructions(p *Payment, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	return InjectVariables(GetInstructions(p.Gateway), InstructionVars{
		"amount":     FormatVND(p.Amount),
		"reference":  p.Reference,
		"expires_at": p.ExpiresAt.In(loc).Format("15:04 02/01/2006"),
	})
}
