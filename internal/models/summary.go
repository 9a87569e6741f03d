package models

import "time"

// Summary is the lobby projection of a session. CurrentRound is
// 1-based here because it is display data.
type Summary struct {
	Code           string    `json:"code"`
	HostName       string    `json:"hostName"`
	PlayerCount    int       `json:"playerCount"`
	Capacity       int       `json:"capacity"`
	SpotsAvailable int       `json:"spotsAvailable"`
	ConnectedCount int       `json:"connectedCount"`
	Started        bool      `json:"started"`
	Completed      bool      `json:"completed"`
	CurrentRound   int       `json:"currentRound"`
	TotalRounds    int       `json:"totalRounds"`
	PlayerNames    []string  `json:"playerNames"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Summarize builds the lobby row for a session.
func (s *Session) Summarize() Summary {
	names := make([]string, len(s.Participants))
	for i, p := range s.Participants {
		names[i] = p.Name
	}
	hostName := ""
	if len(s.Participants) > 0 {
		hostName = s.Participants[0].Name
	}
	return Summary{
		Code:           s.Code,
		HostName:       hostName,
		PlayerCount:    len(s.Participants),
		Capacity:       s.Capacity,
		SpotsAvailable: s.Capacity - len(s.Participants),
		ConnectedCount: s.ConnectedCount(),
		Started:        s.Started,
		Completed:      s.Completed,
		CurrentRound:   s.CurrentRound + 1,
		TotalRounds:    len(s.RoundPlan),
		PlayerNames:    names,
		CreatedAt:      s.CreatedAt,
	}
}
