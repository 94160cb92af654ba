package web

type PagePlayer struct {
	Name    string
	Prompts int
	Votes   int
}

// GamePage is what the per-game status page renders.
type GamePage struct {
	Code              string
	Status            string
	RenderMode        string
	TargetDescription string
	TimeRemaining     int
	MaxPrompts        int
	WinnerName        string
	Players           []PagePlayer
}
