package mqtt

import "strings"

// Topic namespace for all Vitrine MQTT traffic.
const topicRoot = "vitrine"

// Topics builds well-known topic names. The zero value is ready to use.
type Topics struct{}

// SystemStatus is the retained topic carrying the service online/offline
// status, including the Last Will message on unexpected disconnect.
func (Topics) SystemStatus() string {
	return topicRoot + "/system/status"
}

// NoteEvent is the topic for note lifecycle events
// (e.g. vitrine/events/notes/created).
func (Topics) NoteEvent(event string) string {
	return topicRoot + "/events/notes/" + event
}

// Event is the topic for ad-hoc showcase events published through the API.
func (Topics) Event(name string) string {
	return topicRoot + "/events/" + name
}

// InNamespace reports whether topic lives under the Vitrine namespace.
// The API rejects publishes outside it.
func (Topics) InNamespace(topic string) bool {
	return topic == topicRoot || strings.HasPrefix(topic, topicRoot+"/")
}
