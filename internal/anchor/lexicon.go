// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package anchor

import "github.com/tomtom215/storyline/internal/models"

// Built-in lexicon. Taxonomy keywords are layered on top at runtime.

var personTerms = []string{
	"trump", "biden", "putin", "xi", "jinping", "netanyahu", "macron", "musk", "zelensky",
	"scholz", "sunak", "modi", "erdogan", "khamenei", "mbs", "sisi", "powell", "maduro",
	"assad", "zuckerberg", "trudeau",
	"ترامب", "ترمب", "بايدن", "بوتين", "نتنياهو", "ماكرون", "ماسك", "زيلينسكي",
	"أردوغان", "خامنئي", "السيسي", "باول", "مادورو",
}

var topicSpecificTerms = []string{
	// places
	"greenland", "taiwan", "gaza", "crimea", "xinjiang", "hong kong", "donbas", "kherson",
	"rafah", "golan", "kashmir", "tibet",
	"غرينلاند", "تايوان", "غزة", "القرم", "شينجيانغ", "هونغ كونغ", "رفح", "الجولان",
	// tech
	"chatgpt", "openai", "deepseek", "gemini", "claude", "grok", "iphone", "tesla",
	"starlink", "neuralink",
	"شات جي بي تي", "تسلا", "ستارلينك",
	// finance
	"fed", "rate cut", "rate hike", "default", "bailout", "ipo", "merger", "acquisition",
	"bankruptcy", "stimulus",
	"الفيدرالي", "خفض الفائدة", "رفع الفائدة", "إنقاذ", "إفلاس",
	// energy
	"opec", "nord stream", "lng", "pipeline",
	"أوبك", "نورد ستريم",
	// organizations
	"hamas", "hezbollah", "houthis", "taliban", "isis", "wagner",
	"nato", "brics", "g7", "g20", "imf",
	"حماس", "حزب الله", "الحوثي", "الحوثيين", "طالبان", "داعش", "فاغنر",
	"الناتو", "بريكس", "صندوق النقد",
}

var eventTerms = []string{
	"tariff", "tariffs", "sanctions", "invasion", "coup", "protest", "protests",
	"election", "elections", "incumbent", "runoff", "recount", "deal", "treaty",
	"collapse", "crisis", "ceasefire", "summit", "talks", "agreement", "withdrawal",
	"deployment", "strike", "attack",
	"رسوم", "تعريفة", "عقوبات", "غزو", "انقلاب", "احتجاج", "احتجاجات", "انتخابات",
	"صفقة", "معاهدة", "انهيار", "أزمة", "وقف إطلاق النار", "قمة", "محادثات", "انسحاب",
}

var countryTerms = []string{
	"iran", "china", "russia", "israel", "ukraine", "syria", "yemen", "lebanon",
	"saudi", "turkey", "egypt", "pakistan", "india", "iraq", "afghanistan",
	"usa", "us", "uk", "britain", "germany", "france", "japan", "korea",
	"venezuela", "mexico", "brazil", "canada", "australia",
	"qatar", "uae", "emirates", "jordan", "libya", "sudan", "morocco", "algeria",
	"إيران", "الصين", "روسيا", "إسرائيل", "أوكرانيا", "سوريا",
	"اليمن", "لبنان", "السعودية", "تركيا", "مصر", "باكستان", "الهند", "العراق",
	"أفغانستان", "فنزويلا", "قطر", "الإمارات", "الأردن", "ليبيا", "السودان",
}

var mechanismTerms = []string{
	"economy", "economic", "market", "markets", "price", "prices", "trade",
	"growth", "investment", "business", "policy", "government", "military",
	"news", "report", "update", "analysis", "impact", "effect", "future",
	"rise", "fall", "surge", "drop", "increase", "decrease",
	"اقتصاد", "اقتصادي", "سوق", "أسواق", "سعر", "أسعار", "تجارة",
	"نمو", "استثمار", "أعمال", "سياسة", "حكومة", "عسكري",
	"تحليل", "تأثير", "مستقبل", "ارتفاع", "انخفاض",
}

// DefaultTerms returns the built-in lexicon.
func DefaultTerms() []Term {
	groups := []struct {
		class models.AnchorClass
		terms []string
	}{
		{models.AnchorPerson, personTerms},
		{models.AnchorTopicSpecific, topicSpecificTerms},
		{models.AnchorEvent, eventTerms},
		{models.AnchorCountry, countryTerms},
		{models.AnchorMechanism, mechanismTerms},
	}

	size := 0
	for _, g := range groups {
		size += len(g.terms)
	}

	out := make([]Term, 0, size)
	for _, g := range groups {
		for _, t := range g.terms {
			out = append(out, Term{Text: t, Class: g.class})
		}
	}
	return out
}
