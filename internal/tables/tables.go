package tables

// WaveformSize is the number of entries in one stored period of the
// oscillator waveform. It must stay a power of two so lookups can wrap
// with WaveformMask.
const (
	WaveformSize = 128
	WaveformMask = WaveformSize - 1
)

// Octaves and Semitones are the dimensions of the frequency table.
const (
	Octaves   = 8
	Semitones = 12
)

// MaxNoteNumber is the highest index accepted by NumberFrequency.
const MaxNoteNumber = 84

// Waveform is one period of a PC-speaker-like timbre, signed 16-bit.
var Waveform = [WaveformSize]int16{
	4713, 6360, 8007, 9430, 10402, 11374, 11945, 12317, 12689, 12666, 12644, 12560, 12355,
	12149, 11907, 11646, 11385, 11142, 10899, 10668, 10462, 10256, 10075, 9907, 9739, 9593,
	9447, 9306, 9177, 9048, 8920, 8792, 8665, 8543, 8422, 8300, 8176, 8051, 7929,
	7808, 7688, 7566, 7445, 7324, 7205, 7085, 6968, 6852, 6736, 6620, 6505, 6391,
	6281, 6170, 6060, 5949, 5839, 5556, 5273, 4739, 3704, 2669, 1087, -768, -2624,
	-4485, -6347, -8004, -9250, -10495, -11300, -11884, -12469, -12573, -12678, -12695, -12539, -12382,
	-12162, -11911, -11661, -11405, -11150, -10906, -10684, -10462, -10268, -10087, -9907, -9752, -9598,
	-9450, -9316, -9181, -9052, -8925, -8798, -8674, -8550, -8427, -8304, -8181, -8059, -7936,
	-7814, -7692, -7571, -7450, -7330, -7210, -7092, -6974, -6857, -6741, -6626, -6512, -6398,
	-6284, -6173, -6063, -5954, -5793, -5633, -5300, -4624, -3947, -1613, 1549,
}

// Silent marks a frequency table slot that has no audible pitch.
const Silent = 0

// Frequencies maps row x semitone to a pitch in Hz. Row r holds scientific
// octave r+1, so C4 (262 Hz) lives at [3][0].
//
// Row 0 only starts at D#1 and row 7 only holds C8; the other slots in those
// rows are Silent on purpose. Pitches that land there play as a rest.
var Frequencies = [Octaves][Semitones]int{
	{Silent, Silent, Silent, 39, 41, 44, 46, 49, 51, 55, 58, 62},
	{65, 69, 73, 78, 82, 87, 92, 98, 104, 110, 117, 123},
	{131, 139, 147, 156, 165, 175, 185, 196, 208, 220, 233, 247},
	{262, 277, 294, 311, 330, 349, 370, 392, 415, 440, 466, 494},
	{523, 554, 587, 622, 659, 698, 740, 784, 831, 880, 932, 988},
	{1047, 1109, 1175, 1245, 1318, 1397, 1480, 1568, 1661, 1760, 1865, 1976},
	{2093, 2217, 2349, 2489, 2637, 2794, 2960, 3136, 3322, 3520, 3729, 3951},
	{4186, Silent, Silent, Silent, Silent, Silent, Silent, Silent, Silent, Silent, Silent, Silent},
}

var letterSemitones = [7]int{
	'a' - 'a': 9,
	'b' - 'a': 11,
	'c' - 'a': 0,
	'd' - 'a': 2,
	'e' - 'a': 4,
	'f' - 'a': 5,
	'g' - 'a': 7,
}

// LetterSemitone returns the semitone offset (C=0 .. B=11) for a note
// letter in either case.
func LetterSemitone(letter byte) (int, bool) {
	if letter >= 'A' && letter <= 'Z' {
		letter += 'a' - 'A'
	}
	if letter < 'a' || letter > 'g' {
		return 0, false
	}
	return letterSemitones[letter-'a'], true
}

// NoteFrequency returns the pitch of a lettered note in the given octave.
// Octave numbers are scientific, so octave 0 is below the table and silent.
func NoteFrequency(octave, semitone int) int {
	return lookup(octave*Semitones+semitone-Semitones)
}

// NumberFrequency returns the pitch for an absolute note number in
// [0, MaxNoteNumber], indexing the table directly.
func NumberFrequency(n int) int {
	return lookup(n)
}

func lookup(index int) int {
	if index < 0 || index >= Octaves*Semitones {
		return Silent
	}
	return Frequencies[index/Semitones][index%Semitones]
}
