// Package i18n holds the localized message templates shown to users.
package i18n

import (
	"fmt"
)

// Message keys.
const (
	KeyWelcome        = "welcome"
	KeyHelp           = "help"
	KeyStats          = "stats"
	KeyThinking       = "thinking"
	KeyTranscribing   = "transcribing"
	KeyError          = "error"
	KeyLanguageSet    = "language_set"
	KeyHistoryCleared = "history_cleared"
	KeyAnalyzeImage   = "analyze_image"
	KeyNoTranscript   = "no_transcript"
)

// ChooseLanguage is shown before any language is on file, so it is
// deliberately trilingual.
const ChooseLanguage = "🌐 Please choose your language / Tilni tanlang / Выберите язык:"

// SelectLanguageFirst nudges a user whose language is still unknown.
const SelectLanguageFirst = "Please select a language first / Avval tilni tanlang / Сначала выберите язык"

// T returns the message for the key in the given language, falling back
// to English for unknown languages or keys.
func T(lang, key string) string {
	if m, ok := messages[lang]; ok {
		if msg, ok := m[key]; ok {
			return msg
		}
	}
	return messages["en"][key]
}

// Tf returns the message for the key with template arguments applied.
func Tf(lang, key string, args ...any) string {
	return fmt.Sprintf(T(lang, key), args...)
}

var messages = map[string]map[string]string{
	"uz": {
		KeyWelcome: `👨‍⚕️ **Tibbiy Yordamchi - SinoAI**

Assalomu alaykum! Men tibbiy savollar bo'yicha yordam beruvchi AI yordamchiman.

**Qanday foydalanish:**
Menga istalgan tibbiy savolingizni yuboring yoki tibbiy rasm yuboring.

**Namuna savollar:**
- Diabet kasalligining belgilari qanday?
- Yurak xurujining alomatlari nimalar?
- Gipertoniya nima?

⚠️ **Ogohlantirish:** Bu faqat ta'lim maqsadlari uchun. Har doim malakali shifokorga murojaat qiling.

Savolingizni yozing! 🚀`,

		KeyHelp: `📖 **Botdan Foydalanish**

Menga tibbiy savolingizni yuboring va men ma'lumot beraman!

**Buyruqlar:**
/start - Tilni tanlash
/help - Yordam
/stats - Bot statistikasi
/language - Tilni o'zgartirish
/clear - Suhbat tarixini tozalash

**Maslahatlar:**
✓ Aniq va ravshan savollar bering
✓ Simptomlar, davolanish, tibbiy atamalar haqida so'rashingiz mumkin
✓ Tibbiy rasmlar va ovozli xabarlar yuborishingiz mumkin`,

		KeyStats: `📊 **Bot Statistikasi**

📍 Mintaqa: %s
✅ Holat: Faol
🏥 Maqsad: Tibbiy AI Yordamchi
🏢 Tashkilot: SinoAI`,

		KeyThinking:     "O'ylayapman...",
		KeyTranscribing: "Ovozli xabar yozib olinmoqda...",

		KeyError: `⚠️ Kechirasiz, xatolik yuz berdi.

Xato tafsilotlari: %s

Iltimos, qaytadan urinib ko'ring yoki savolingizni boshqacha shakllantiring.`,

		KeyLanguageSet:    "✅ Til o'zbekcha qilib o'rnatildi!",
		KeyHistoryCleared: "🗑️ Suhbat tarixi tozalandi.",
		KeyAnalyzeImage:   "Iltimos, ushbu tibbiy tasvirni tahlil qiling.",
		KeyNoTranscript:   "⚠️ Ovozli xabarni matn sifatida aniqlab bo'lmadi. Iltimos, qayta urinib ko'ring.",
	},

	"ru": {
		KeyWelcome: `👨‍⚕️ **Медицинский Ассистент - SinoAI**

Здравствуйте! Я AI-ассистент для медицинских вопросов.

**Как использовать:**
Отправьте мне любой медицинский вопрос или медицинское изображение.

**Примеры вопросов:**
- Какие симптомы диабета?
- Что такое артериальное давление?
- Признаки сердечного приступа?

⚠️ **Предупреждение:** Только для образовательных целей. Всегда консультируйтесь с врачом.

Напишите ваш вопрос! 🚀`,

		KeyHelp: `📖 **Как использовать бота**

Отправьте мне медицинский вопрос и я предоставлю информацию!

**Команды:**
/start - Выбор языка
/help - Эта справка
/stats - Статистика бота
/language - Изменить язык
/clear - Очистить историю чата

**Советы:**
✓ Задавайте чёткие, конкретные вопросы
✓ Могу помочь с симптомами, лечением, медицинскими терминами
✓ Можете отправлять медицинские изображения и голосовые сообщения`,

		KeyStats: `📊 **Статистика бота**

📍 Регион: %s
✅ Статус: Активен
🏥 Назначение: Медицинский AI Ассистент
🏢 Организация: SinoAI`,

		KeyThinking:     "Думаю...",
		KeyTranscribing: "Расшифровываю голосовое сообщение...",

		KeyError: `⚠️ Извините, произошла ошибка.

Детали ошибки: %s

Пожалуйста, попробуйте снова или переформулируйте вопрос.`,

		KeyLanguageSet:    "✅ Язык установлен на русский!",
		KeyHistoryCleared: "🗑️ История чата очищена.",
		KeyAnalyzeImage:   "Пожалуйста, проанализируйте это медицинское изображение.",
		KeyNoTranscript:   "⚠️ Не удалось распознать голосовое сообщение. Пожалуйста, попробуйте ещё раз.",
	},

	"en": {
		KeyWelcome: `👨‍⚕️ **Medical Assistant - SinoAI**

Hello! I'm an AI assistant for medical questions.

**How to use:**
Send me any medical question or medical image.

**Example questions:**
- What are the symptoms of diabetes?
- What is hypertension?
- Signs of a heart attack?

⚠️ **Disclaimer:** This is for educational purposes only. Always consult a licensed physician.

Type your question to get started! 🚀`,

		KeyHelp: `📖 **How to Use the Bot**

Just send me your medical question and I'll provide information!

**Commands:**
/start - Choose language
/help - This help message
/stats - Bot statistics
/language - Change language
/clear - Clear chat history

**Tips:**
✓ Ask clear, specific questions
✓ I can help with symptoms, treatments, medical terms
✓ You can send medical images and voice messages`,

		KeyStats: `📊 **Bot Statistics**

📍 Region: %s
✅ Status: Active
🏥 Purpose: Medical AI Assistant
🏢 Organization: SinoAI`,

		KeyThinking:     "Thinking...",
		KeyTranscribing: "Transcribing your voice message...",

		KeyError: `⚠️ Sorry, an error occurred.

Error details: %s

Please try again or rephrase your question.`,

		KeyLanguageSet:    "✅ Language set to English!",
		KeyHistoryCleared: "🗑️ Chat history cleared.",
		KeyAnalyzeImage:   "Please analyze this medical image.",
		KeyNoTranscript:   "⚠️ Could not transcribe the voice message. Please try again.",
	},
}
