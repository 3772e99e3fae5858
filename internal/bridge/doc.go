// Package bridge routes controller and terminal events to the music server.
//
// A Dispatcher owns the volume session and serializes every command it
// sends: device lines are mapped through a small vocabulary, Spotify links
// are normalized and queued, and URL-bearing commands finish with an audible
// cue. Only transport failures are treated as fatal by Run.
package bridge
