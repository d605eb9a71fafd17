package analytics

// Rarity buckets an achievement's relative difficulty.
type Rarity string

const (
	RarityCommon    Rarity = "COMMON"
	RarityUncommon  Rarity = "UNCOMMON"
	RarityRare      Rarity = "RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"
)

// AchievementKey identifies one of the nine fixed badges.
type AchievementKey string

const (
	AchievementFirstAyah        AchievementKey = "FIRST_AYAH"
	AchievementFirstJuz         AchievementKey = "FIRST_JUZ"
	AchievementWeekStreak       AchievementKey = "WEEK_STREAK"
	AchievementMonthStreak      AchievementKey = "MONTH_STREAK"
	AchievementHundredReviews   AchievementKey = "HUNDRED_REVIEWS"
	AchievementThousandReviews  AchievementKey = "THOUSAND_REVIEWS"
	AchievementFirstManzil      AchievementKey = "FIRST_MANZIL"
	AchievementFluencyMastery   AchievementKey = "FLUENCY_MASTERY"
	AchievementFullQuranManzil AchievementKey = "FULL_QURAN_MANZIL"
)

// Achievement is one badge definition plus its fixed threshold.
type Achievement struct {
	Key       AchievementKey
	Name      string
	Rarity    Rarity
	Threshold int
}

// Catalog is the fixed set of nine badges, in display order. Thresholds
// are expressed against the same counters the rest of the system already
// tracks: ayahs memorized, daily streak length, lifetime reviews,
// Manzil-tier items, best fluency score.
var Catalog = []Achievement{
	{Key: AchievementFirstAyah, Name: "First Ayah", Rarity: RarityCommon, Threshold: 1},
	{Key: AchievementFirstJuz, Name: "First Juz", Rarity: RarityUncommon, Threshold: 20 * 8},
	{Key: AchievementWeekStreak, Name: "Seven-Day Streak", Rarity: RarityCommon, Threshold: 7},
	{Key: AchievementMonthStreak, Name: "Thirty-Day Streak", Rarity: RarityRare, Threshold: 30},
	{Key: AchievementHundredReviews, Name: "Hundred Reviews", Rarity: RarityCommon, Threshold: 100},
	{Key: AchievementThousandReviews, Name: "Thousand Reviews", Rarity: RarityEpic, Threshold: 1000},
	{Key: AchievementFirstManzil, Name: "First Manzil Item", Rarity: RarityRare, Threshold: 1},
	{Key: AchievementFluencyMastery, Name: "Fluency Mastery", Rarity: RarityUncommon, Threshold: 90},
	{Key: AchievementFullQuranManzil, Name: "Full Quran at Manzil", Rarity: RarityLegendary, Threshold: 6236},
}

// Progress is one badge's evaluated state for a user.
type Progress struct {
	Achievement Achievement
	Current     int
	Unlocked    bool
}

// Stats is the set of user counters the catalog is evaluated against.
type Stats struct {
	AyahsMemorized     int
	CurrentStreakDays  int
	LifetimeReviews    int
	ManzilItems        int
	BestFluencyScore   int
}

// Evaluate returns every badge's progress against stats. Unlocked is true
// iff the relevant counter has reached the badge's fixed threshold.
func Evaluate(stats Stats) []Progress {
	out := make([]Progress, 0, len(Catalog))
	for _, a := range Catalog {
		current := counterFor(a.Key, stats)
		out = append(out, Progress{
			Achievement: a,
			Current:     current,
			Unlocked:    current >= a.Threshold,
		})
	}
	return out
}

func counterFor(key AchievementKey, stats Stats) int {
	switch key {
	case AchievementFirstAyah, AchievementFirstJuz:
		return stats.AyahsMemorized
	case AchievementWeekStreak, AchievementMonthStreak:
		return stats.CurrentStreakDays
	case AchievementHundredReviews, AchievementThousandReviews:
		return stats.LifetimeReviews
	case AchievementFirstManzil, AchievementFullQuranManzil:
		return stats.ManzilItems
	case AchievementFluencyMastery:
		return stats.BestFluencyScore
	default:
		return 0
	}
}
