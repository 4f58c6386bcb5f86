package processor

// User-facing text. None of it may carry internal error detail.
const (
	HotlineLine = "National Domestic Violence Hotline: 1-800-799-7233 (24/7), or text START to 88788."

	ValidationMessage = "I'm sorry, I didn't catch that. Could you tell me what kind of help you're looking for?"

	UnknownIntentMessage = "I want to make sure I help with the right thing. Are you looking for a safe place to stay, legal help, or information about domestic violence?"

	MissingLocationMessage = "I can help you find a shelter. What city or town are you in?"

	CurrentLocationMessage = "I can't see your location from here. Could you tell me the name of your city or town?"

	NoResultsMessage = "I couldn't find specific resources for that right now. The National Domestic Violence Hotline at 1-800-799-7233 is available 24/7 and can connect you with local help."

	CannedFallbackMessage = "I'm having trouble looking that up right now, but you are not alone. Please call the National Domestic Violence Hotline at 1-800-799-7233, available 24/7. If you are in immediate danger, call 911."

	// FallbackSystemPrompt sets the register for generated fallback replies.
	FallbackSystemPrompt = "You are a calm, supportive assistant for people affected by domestic violence. " +
		"Answer in at most three short sentences of plain language suitable for reading aloud on a phone call. " +
		"Never mention technical problems. Always mention the National Domestic Violence Hotline at 1-800-799-7233, " +
		"and tell the person to call 911 if they are in immediate danger."
)
