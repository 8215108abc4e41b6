package chaosnet

// FeedbackListener - интерфейс событий обратной связи для рендера и звука.
// Все обработчики опциональны, вызываются часто и не должны блокировать.
type FeedbackListener struct {
	OnScreenShake func(intensity float64)
	OnParticles   func(x, y float64, count int, color string)
	OnStatus      func(text string)
	OnCursor      func(peerID string, position Point, toolID string)
}

func (l *FeedbackListener) shake(intensity float64) {
	if l != nil && l.OnScreenShake != nil {
		l.OnScreenShake(intensity)
	}
}

func (l *FeedbackListener) particles(x, y float64, count int, color string) {
	if l != nil && l.OnParticles != nil {
		l.OnParticles(x, y, count, color)
	}
}

func (l *FeedbackListener) status(text string) {
	if l != nil && l.OnStatus != nil {
		l.OnStatus(text)
	}
}

func (l *FeedbackListener) cursor(peerID string, position Point, toolID string) {
	if l != nil && l.OnCursor != nil {
		l.OnCursor(peerID, position, toolID)
	}
}
