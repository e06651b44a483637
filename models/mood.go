package models

type Mood string

const (
	MoodHappy      Mood = "happy"
	MoodSad        Mood = "sad"
	MoodAngry      Mood = "angry"
	MoodNumb       Mood = "numb"
	MoodLove       Mood = "love"
	MoodAnxious    Mood = "anxious"
	MoodFrustrated Mood = "frustrated"
	MoodPeaceful   Mood = "peaceful"
)

type MoodInfo struct {
	Value Mood   `json:"value"`
	Emoji string `json:"emoji"`
	Label string `json:"label"`
}

// Moods is ordered; the first entry is the fallback for unknown values.
var Moods = []MoodInfo{
	{Value: MoodHappy, Emoji: "😄", Label: "Happy"},
	{Value: MoodSad, Emoji: "😔", Label: "Sad"},
	{Value: MoodAngry, Emoji: "😡", Label: "Angry"},
	{Value: MoodNumb, Emoji: "😶", Label: "Numb"},
	{Value: MoodLove, Emoji: "❤️", Label: "Love"},
	{Value: MoodAnxious, Emoji: "😰", Label: "Anxious"},
	{Value: MoodFrustrated, Emoji: "😤", Label: "Frustrated"},
	{Value: MoodPeaceful, Emoji: "😌", Label: "Peaceful"},
}

var PredefinedTags = []string{
	"love",
	"college",
	"family",
	"career",
	"friendship",
	"mental health",
	"regret",
	"hope",
}

func IsValidMood(s string) bool {
	for _, m := range Moods {
		if string(m.Value) == s {
			return true
		}
	}
	return false
}

func MoodByValue(s string) MoodInfo {
	for _, m := range Moods {
		if string(m.Value) == s {
			return m
		}
	}
	return Moods[0]
}

// NormalizeMood maps unrecognized values onto the first mood.
func NormalizeMood(s string) Mood {
	return MoodByValue(s).Value
}
