// Package ayah holds the static Qur'an verse reference data: 6236 rows,
// seeded once by internal/seed and immutable at runtime.
package ayah

// Ayah is one verse of the Qur'an.
type Ayah struct {
	ID           int    `json:"id"`
	SurahNumber  int    `json:"surah_number"`
	AyahNumber   int    `json:"ayah_number"`
	JuzNumber    int    `json:"juz_number"`
	PageNumber   int    `json:"page_number"`
	HizbQuarter  int    `json:"hizb_quarter"`
	TextUthmani  string `json:"text_uthmani"`
}
