package vocal

// Vowel selects a row of the formant target table.
type Vowel int

const (
	VowelI Vowel = iota
	VowelIH
	VowelEH
	VowelAE
	VowelA
	VowelO
	VowelOU
	VowelUH
	VowelU
	VowelSchwa
	VowelCount
)

var vowelNames = [VowelCount]string{
	"I", "IH", "EH", "AE", "A", "O", "OU", "UH", "U", "SCHWA",
}

func (v Vowel) String() string {
	if v < 0 || v >= VowelCount {
		return "vowel(?)"
	}
	return vowelNames[v]
}

// Voice selects a column set of the formant target table. Only the neutral
// voice is populated; the selector range is wider so callers may roll an
// index without caring how many voices are tuned.
type Voice int

const (
	VoiceNeutral Voice = iota
	VoiceCount
)

// formantStages is the number of resonators in the formant filter.
const formantStages = 3

// formantTarget is one vowel's tuning: three formant center frequencies in
// Hz and the matching resonance Q per stage.
type formantTarget struct {
	freq [formantStages]float32
	q    [formantStages]float32
}

// Average male formant frequencies per vowel, with hand-tuned Qs.
var vowelTable = [VoiceCount][VowelCount]formantTarget{
	VoiceNeutral: {
		VowelI:     {freq: [3]float32{270, 2290, 3010}, q: [3]float32{10, 9, 9}},   // see
		VowelIH:    {freq: [3]float32{390, 1990, 2550}, q: [3]float32{12, 11, 10}}, // sit
		VowelEH:    {freq: [3]float32{530, 1840, 2480}, q: [3]float32{11, 11, 10}}, // set
		VowelAE:    {freq: [3]float32{660, 1720, 2410}, q: [3]float32{11, 11, 10}}, // sat
		VowelA:     {freq: [3]float32{730, 1090, 2440}, q: [3]float32{10, 8, 9}},   // father
		VowelO:     {freq: [3]float32{570, 840, 2410}, q: [3]float32{11, 10, 10}},  // saw
		VowelOU:    {freq: [3]float32{500, 700, 2450}, q: [3]float32{11, 10, 10}},  // go
		VowelUH:    {freq: [3]float32{440, 1020, 2240}, q: [3]float32{12, 10, 10}}, // put
		VowelU:     {freq: [3]float32{300, 870, 2240}, q: [3]float32{10, 9, 9}},    // boot
		VowelSchwa: {freq: [3]float32{500, 1500, 2400}, q: [3]float32{12, 11, 10}}, // sofa
	},
}

// FormantTargets returns the tabled center frequencies and Q values for the
// given voice and vowel. Out-of-range selectors return zero values.
func FormantTargets(voice Voice, vowel Vowel) (freqs, qs [3]float32) {
	if voice < 0 || voice >= VoiceCount || vowel < 0 || vowel >= VowelCount {
		return freqs, qs
	}
	t := vowelTable[voice][vowel]
	return t.freq, t.q
}
