package analyzer

import "regexp"

// The tables in this file are the scoring policy: category keyword sets,
// the reputable-source list, sensational-language markers, official-body
// references and the fixed point deltas applied per signal. They are the
// source of truth for the credibility score and are pinned by golden tests.

// categoryOrder fixes iteration priority. The category with the most keyword
// hits wins; on a tie the one earlier in this list wins.
var categoryOrder = []string{
	"politik", "ekonomi", "bisnis", "hukum", "internasional", "olahraga",
	"hiburan", "tekno", "otomotif", "kesehatan", "pendidikan", "sains",
	"lifestyle",
}

// CategoryDefault is returned when no keyword set matches.
const CategoryDefault = "umum"

var categoryKeywords = map[string][]*regexp.Regexp{
	"politik": compileAll(
		`mpr\b`, `dpr\b`, `pilkada\b`, `presiden\b`, `menteri\b`, `partai\b`,
		`perppu\b`, `omnibus law\b`,
	),
	"ekonomi": compileAll(
		`\bbi\b`, `\botp\b`, `inflasi\b`, `\bpdb\b`, `pajak\b`, `sukuk\b`,
		`bea cukai\b`, `ihsg\b`, `rupiah\b`, `utang\b`,
	),
	"bisnis": compileAll(
		`startup\b`, `investasi\b`, `pendanaan\b`, `\bipo\b`, `akuisisi\b`,
		`kemitraan\b`,
	),
	"hukum": compileAll(
		`\bmk\b`, `\bma\b`, `kejagung\b`, `\bkpk\b`, `\bpolri\b`, `pidana\b`,
		`vonis\b`, `tersangka\b`, `pasal\b`,
	),
	"internasional": compileAll(
		`\bas\b`, `china\b`, `tiongkok\b`, `rusia\b`, `ukraina\b`, `\bpbb\b`,
		`asean\b`, `\bnato\b`,
	),
	"olahraga": compileAll(
		`liga\b`, `premier\b`, `liga 1\b`, `timnas\b`, `piala\b`, `olimpiade\b`,
		`\bbwf\b`, `\bfifa\b`, `motogp\b`, `formula\b`,
	),
	"hiburan": compileAll(
		`film\b`, `drama\b`, `idol\b`, `musik\b`, `album\b`, `konser\b`,
		`artis\b`, `seleb\b`,
	),
	"tekno": compileAll(
		`\bai\b`, `chip\b`, `\bgpu\b`, `aplikasi\b`, `android\b`, `\bios\b`,
		`siber\b`, `cloud\b`,
	),
	"otomotif": compileAll(
		`motor\b`, `mobil\b`, `otomotif\b`, `\bbbm\b`, `\bev\b`, `\bsuv\b`,
	),
	"kesehatan": compileAll(
		`\brs\b`, `\bbpjs\b`, `stunting\b`, `vaksin\b`, `flu\b`, `kemenkes\b`,
		`covid\b`, `kanker\b`,
	),
	"pendidikan": compileAll(
		`kemdikbud\b`, `\bsnp\b`, `kurikulum\b`, `kampus\b`, `guru\b`,
		`siswa\b`, `snpm[bp]\b`,
	),
	"sains": compileAll(
		`riset\b`, `penelitian\b`, `ilmuwan\b`, `makalah\b`, `jurnal\b`,
	),
	"lifestyle": compileAll(
		`fesyen\b`, `kuliner\b`, `travel\b`, `wisata\b`, `gaya hidup\b`,
		`relationship\b`,
	),
}

// reputableHosts are suffix-matched against the source domain.
var reputableHosts = []string{
	"kompas.com", "cnnindonesia.com", "detik.com", "liputan6.com",
	"tempo.co", "kumparan.com", "tribunnews.com", "antaranews.com",
	"cnbcindonesia.com", "beritasatu.com",
}

var sensationalPatterns = compileAllCI(
	`\b100%\s*ampuh\b`, `\bfix\b`, `\bterbukti hoax\b`,
	`\bheboh\b`, `\bviral\b`, `\bmengerikan\b`, `\bkonspirasi\b`,
	`\bkatanya\b`, `\bforward(an)?\b`, `\bsebar(kan)?\b`, `\bshare( lah| ya)?\b`,
	`\bternyata\b`, `\bbongkar\b`, `\bwaspada\b`, `\bskandal\b`,
)

var officialPatterns = compileAllCI(
	`\bkemenkeu\b`, `\bkemenkes\b`, `\bkemenlu\b`, `\bkemendagri\b`, `\bkemdikbud\b`,
	`\bpolri\b`, `\btni\b`, `\bkpk\b`, `\bmk\b`, `\bma\b`, `\bpemkot\b`, `\bpemkab\b`,
	`\bbpjs\b`, `\bbi\b`, `\bbps\b`, `\bkpu\b`, `\bbawaslu\b`,
)

var factCheckPatterns = compileAllCI(
	`\bcek fakta\b`, `\bfact[- ]?check\b`, `\bklarifikasi\b`, `\bdisinformasi\b`,
	`\bmisinformasi\b`, `\bhoaks?\b`, `\bsalah konteks\b`, `\bsalah atribusi\b`,
)

var (
	quotePattern       = regexp.MustCompile(`“[^”]{10,}”|"[^"\n]{10,}"`)
	attributionPattern = regexp.MustCompile(`(?i)\b(menurut|kata|ujar)\s+\p{Lu}`)
	numberPattern      = regexp.MustCompile(`\b\d{1,3}(?:[.,]\d{3})*(?:,\d+)?\b`)
	datePattern        = regexp.MustCompile(`(?i)\b(\d{1,2}\s+(jan|feb|mar|apr|mei|jun|jul|agu|sep|okt|nov|des)[a-z]*\s+\d{4})\b`)
	wordPattern        = regexp.MustCompile(`[A-Za-zÀ-ÖØ-öø-ÿ]{2,}`)
	titleWordPattern   = regexp.MustCompile(`[A-Za-zÀ-ÖØ-öø-ÿ0-9']+`)
)

// Point deltas applied to the base score per triggered signal.
const (
	scoreBase              = 50.0
	deltaReputable         = 25.0
	deltaQuotesMany        = 10.0
	deltaQuoteOne          = 5.0
	deltaNumbers           = 5.0
	deltaDates             = 3.0
	deltaOfficials         = 5.0
	deltaCapsRatio         = 8.0
	deltaShortContent      = 8.0
	deltaWeakTitle         = 8.0
	sensationalPenaltyBase = 10.0
	sensationalPenaltyStep = 2.0
	sensationalPenaltyCap  = 25.0
	capsRatioThreshold     = 0.12
	shortContentChars      = 500
)

// Reason strings surfaced to callers. Indonesian, matching the product copy.
const (
	reasonReputable       = "Sumber media arus utama."
	reasonOffWhitelist    = "Sumber di luar whitelist media arus utama."
	reasonRawText         = "Input teks mentah (tanpa domain)."
	reasonQuotesMany      = "Memuat banyak kutipan narasumber (≥2)."
	reasonQuoteOne        = "Memuat kutipan narasumber."
	reasonNoQuotes        = "Minim kutipan narasumber."
	reasonNumbers         = "Ada data/angka pendukung."
	reasonDates           = "Ada tanggal/waktu yang jelas."
	reasonOfficials       = "Rujuk lembaga/otoritas resmi."
	reasonCaps            = "Proporsi HURUF BESAR berlebihan."
	reasonShort           = "Konten sangat pendek."
	reasonWeakTitle       = "Konsistensi judul–isi lemah."
	reasonFactCheck       = "Artikel bertema cek fakta (indikasi mitigasi sensasional)."
	caveatValidButLoud    = "Namun terdapat indikasi bahasa sensasional; tetap perlu kewaspadaan."
	caveatHoaxButCredible = "Ada sebagian unsur kredibel, tetapi tidak cukup menutup indikasi masalah."
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

func compileAllCI(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}
