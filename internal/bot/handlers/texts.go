package handlers

import (
	"GreenPay/internal/bot/messages"
	"GreenPay/internal/core/domain"
	"fmt"
	"strings"
)

const (
	textWelcome      = "🌳 GreenPay ga xush kelibsiz!\n\nDaraxt eking, tasdiqlang va mukofot oling."
	labelPlantButton = "🌱 Daraxt ekish"

	textInternalError = "⚠️ Ichki xatolik yuz berdi. Keyinroq qayta urinib ko‘ring."
	textReviewerOnly  = "⛔ Bu buyruq faqat moderator uchun."
	textNoPending     = "📭 Kutilayotgan arizalar yo‘q."
	textNoTrees       = "🌱 Siz hali daraxt yubormadingiz."

	answerApproved       = "✅ Tasdiqlandi"
	answerRejected       = "❌ Rad etildi"
	answerAlreadyDecided = "ℹ️ Bu ariza allaqachon ko‘rib chiqilgan."
	answerNotFound       = "⚠️ Ariza topilmadi."
	answerForbidden      = "⛔ Sizda ruxsat yo‘q."
	answerMalformed      = "⚠️ Noto‘g‘ri so‘rov."
	answerFailed         = "⚠️ Ichki xatolik. Qayta urinib ko‘ring."
)

// listLimit is how many rows /pending and /mytrees show.
const listLimit = 10

var statusLabels = map[domain.SubmissionStatus]string{
	domain.StatusPending:  "⏳ Tekshiruvda",
	domain.StatusApproved: "✅ Tasdiqlangan",
	domain.StatusRejected: "❌ Rad etilgan",
}

// formatList renders submissions as a MarkdownV2 list under title.
func formatList(title string, subs []*domain.Submission, line func(*domain.Submission) string) string {
	var sb strings.Builder
	sb.WriteString("*" + messages.EscapeMarkdown(title) + "*\n")
	for _, s := range subs {
		sb.WriteString("\n")
		sb.WriteString(messages.EscapeMarkdown(line(s)))
	}
	return sb.String()
}

func pendingLine(s *domain.Submission) string {
	return fmt.Sprintf("🆔 %d · %s · %s", s.ID, s.Species, s.CreatedAt.Format("2006-01-02"))
}

func historyLine(s *domain.Submission) string {
	return fmt.Sprintf("%s · %s · %s", statusLabels[s.Status], s.Species, s.CreatedAt.Format("2006-01-02"))
}
