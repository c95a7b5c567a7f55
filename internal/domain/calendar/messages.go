package calendar

// dailyMessages holds the fixed message revealed with each calendar day.
var dailyMessages = map[int]string{
	1:  "A new beginning: every small step today builds the magic of tomorrow.",
	2:  "Kindness is the gift that always fits. Give some away today.",
	3:  "You are stronger than you think and braver than you feel.",
	4:  "Slow down. The season's best moments hide in the quiet ones.",
	5:  "Gratitude turns what you have into enough.",
	6:  "Share a smile today. It might be the warmest thing someone receives.",
	7:  "Dream big, start small, begin now.",
	8:  "The lights shine brighter when you share them with someone.",
	9:  "Mistakes are proof that you are trying. Keep going.",
	10: "Warm drinks, warm hearts: make time for both today.",
	11: "Your presence is a present. Show up for the people you love.",
	12: "Halfway there! Celebrate how far you have come.",
	13: "Let go of what you cannot control. Embrace the calm.",
	14: "Courage is not the absence of fear, but acting in spite of it.",
	15: "Today is a perfect day to be happy. Choose joy!",
	16: "Your imperfections are what make you unique and wonderful.",
	17: "Every sunset carries the promise of a bright new dawn.",
	18: "Your resilience is your superpower. You are unstoppable!",
	19: "Surround yourself with love, laughter and precious moments.",
	20: "Stars shine brightest in the dark. So do you.",
	21: "Today, be the reason someone smiles.",
	22: "Your journey is your own. Don't measure it against anyone else's.",
	23: "The magic of Christmas lives in your generous heart.",
	24: "You are loved, you matter, you are needed. Merry Christmas! May this day be full of joy, love and magic!",
}

// MessageForDay returns the fixed message revealed with the given day.
func MessageForDay(day int) string {
	return dailyMessages[day]
}
