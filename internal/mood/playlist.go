package mood

// Playlist is a static music recommendation matched to a mood label.
type Playlist struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

var playlists = map[string]Playlist{
	LabelChaos:    {Name: "Emergency Calm: Ambient Rescue", URL: "https://open.spotify.com/playlist/37i9dQZF1DX3Ogo9pFvBkY"},
	LabelStressed: {Name: "Deep Breaths: Acoustic Chill", URL: "https://open.spotify.com/playlist/37i9dQZF1DWXe9gFZP0gtP"},
	LabelNeutral:  {Name: "Steady State: Background Grooves", URL: "https://open.spotify.com/playlist/37i9dQZF1DWZeKCadgRdKQ"},
	LabelGood:     {Name: "Good Energy: Feel-Good Hits", URL: "https://open.spotify.com/playlist/37i9dQZF1DX3rxVfibe1L0"},
	LabelVibes:    {Name: "Office Party Bangers", URL: "https://open.spotify.com/playlist/37i9dQZF1DXaXB8fQg7xif"},
}

// PlaylistFor maps a mood label to its playlist. Unrecognized labels
// fall back to the Neutral entry.
func PlaylistFor(label string) Playlist {
	if p, ok := playlists[label]; ok {
		return p
	}
	return playlists[LabelNeutral]
}
