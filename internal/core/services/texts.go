package services

import (
	"GreenPay/internal/core/domain"
	"fmt"
	"strconv"
)

// User-facing wording. The bot speaks Uzbek.
const (
	textAcknowledged = "✅ Ma’lumot yuborildi. Tekshiruvda."
	textApproved     = "🎉 Daraxtingiz tasdiqlandi!"
	textRejected     = "❌ Daraxtingiz rad etildi."

	markerApproved = "\n\n✅ Tasdiqlandi"
	markerRejected = "\n\n❌ Rad etildi"

	labelApprove = "✅ Tasdiqlash"
	labelReject  = "❌ Rad etish"
)

// rejectionTexts explain a validation failure per field.
var rejectionTexts = map[string]string{
	domain.FieldPayload:   "⚠️ Ma’lumotni o‘qib bo‘lmadi. Iltimos, qaytadan yuboring.",
	domain.FieldSubmitter: "⚠️ Foydalanuvchini aniqlab bo‘lmadi.",
	domain.FieldSpecies:   "⚠️ Daraxt turini kiriting.",
	domain.FieldLatitude:  "⚠️ Kenglik -90 va 90 oralig‘ida bo‘lishi kerak.",
	domain.FieldLongitude: "⚠️ Uzunlik -180 va 180 oralig‘ida bo‘lishi kerak.",
	domain.FieldPhoto:     "⚠️ Rasm yaroqsiz. Iltimos, boshqa rasm yuboring.",
}

func rejectionText(field string) string {
	if t, ok := rejectionTexts[field]; ok {
		return t
	}
	return rejectionTexts[domain.FieldPayload]
}

// reviewCaption is the plain-text caption of a review card.
func reviewCaption(s *domain.Submission) string {
	return fmt.Sprintf("🌳 Yangi daraxt\n👤 %s\n🌳 %s\n📍 %s, %s\n🆔 ID: %d",
		s.SubmitterName, s.Species, formatCoord(s.Latitude), formatCoord(s.Longitude), s.ID)
}

func decisionText(d domain.Decision) string {
	if d == domain.DecisionApprove {
		return textApproved
	}
	return textRejected
}

func decisionMarker(d domain.Decision) string {
	if d == domain.DecisionApprove {
		return markerApproved
	}
	return markerRejected
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
