package twilio

import (
	"fmt"

	"github.com/twilio/twilio-go/twiml"
)

const (
	voiceLanguage = "en-US"
	gatherTimeout = "5"
)

// SilenceParam counts consecutive unanswered gathers on the redirect URL.
const SilenceParam = "silences"

// GatherSpeech says prompt and listens for the caller's answer, posting it to action.
// If the caller stays silent the call is redirected to action with the silence
// count incremented.
func GatherSpeech(prompt, action string, silences int) (string, error) {
	gather := &twiml.VoiceGather{
		Input:         "speech",
		Action:        action,
		Method:        "POST",
		Language:      voiceLanguage,
		SpeechTimeout: "auto",
		Timeout:       gatherTimeout,
		InnerElements: []twiml.Element{
			&twiml.VoiceSay{Message: prompt, Language: voiceLanguage},
		},
	}
	redirect := &twiml.VoiceRedirect{
		Url:    fmt.Sprintf("%s?%s=%d", action, SilenceParam, silences+1),
		Method: "POST",
	}

	return twiml.Voice([]twiml.Element{gather, redirect})
}

// SayAndHangup speaks a final message and ends the call.
func SayAndHangup(message string) (string, error) {
	return twiml.Voice([]twiml.Element{
		&twiml.VoiceSay{Message: message, Language: voiceLanguage},
		&twiml.VoiceHangup{},
	})
}

// Message replies to an inbound SMS.
func Message(body string) (string, error) {
	return twiml.Messages([]twiml.Element{
		&twiml.MessagingMessage{Body: body},
	})
}
