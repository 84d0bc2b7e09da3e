// Package chat defines the shared event vocabulary that every source and
// module in the runtime speaks: source identifiers, channel kinds, message
// content, and the tagged Event/EventType pair that flows through the
// dispatch loop.
package chat

import "fmt"

// SourceId names a configured source. It is opaque outside this package
// except for the reserved value "core", which denotes events originated by
// the Timer Service or the runtime itself rather than a network source.
type SourceId string

// Core is the reserved SourceId used for timer and system-originated events.
// It must never appear among configured sources; Validate rejects it.
const Core SourceId = "core"

// ChannelKind tags the variant held by a Channel value.
type ChannelKind int

const (
	ChannelNone ChannelKind = iota
	ChannelDirect
	ChannelUser
	ChannelGroup
)

// Channel is a tagged union over the four ways a message can be addressed.
// The zero value is ChannelNone.
type Channel struct {
	Kind  ChannelKind
	Name  string   // Channel/User
	Names []string // Group
}

// ChannelOf builds a Channel("name") value.
func ChannelOf(name string) Channel { return Channel{Kind: ChannelDirect, Name: name} }

// UserOf builds a User("name") value.
func UserOf(name string) Channel { return Channel{Kind: ChannelUser, Name: name} }

// GroupOf builds a Group(names) value.
func GroupOf(names []string) Channel { return Channel{Kind: ChannelGroup, Names: names} }

// Equal reports structural equality, as required by the data model's
// "compared structurally" rule for Channel.
func (c Channel) Equal(o Channel) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case ChannelDirect, ChannelUser:
		return c.Name == o.Name
	case ChannelGroup:
		if len(c.Names) != len(o.Names) {
			return false
		}
		for i := range c.Names {
			if c.Names[i] != o.Names[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (c Channel) String() string {
	switch c.Kind {
	case ChannelDirect:
		return c.Name
	case ChannelUser:
		return "@" + c.Name
	case ChannelGroup:
		return fmt.Sprintf("group%v", c.Names)
	default:
		return "<none>"
	}
}

// ContentKind tags the variant held by a MessageContent value.
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentMe
	ContentImage
)

// MessageContent is a tagged union: Text(string) | Me(string) | Image.
type MessageContent struct {
	Kind ContentKind
	Text string // Text, Me
}

func TextContent(s string) MessageContent { return MessageContent{Kind: ContentText, Text: s} }
func MeContent(s string) MessageContent    { return MessageContent{Kind: ContentMe, Text: s} }
func ImageContent() MessageContent         { return MessageContent{Kind: ContentImage} }

// Message is an immutable chat message, produced by sources and modules
// alike.
type Message struct {
	Author  string
	Channel Channel
	Content MessageContent
}

// DisplayWithNick renders a message the way the transcript logger and the
// facade's send-logging both use: "<nick> text", "* nick text" for Me
// content, or "<nick> [Image]".
func DisplayWithNick(nick string, c MessageContent) string {
	switch c.Kind {
	case ContentMe:
		return fmt.Sprintf("* %s %s", nick, c.Text)
	case ContentImage:
		return fmt.Sprintf("<%s> [Image]", nick)
	default:
		return fmt.Sprintf("<%s> %s", nick, c.Text)
	}
}

// EventType is a total tag over Event's variants.
type EventType int

const (
	Connection EventType = iota
	TextMessage
	MeMessage
	ImageMessage
	UserStatus
	Timer
	Other
)

func (t EventType) String() string {
	switch t {
	case Connection:
		return "Connection"
	case TextMessage:
		return "TextMessage"
	case MeMessage:
		return "MeMessage"
	case ImageMessage:
		return "ImageMessage"
	case UserStatus:
		return "UserStatus"
	case Timer:
		return "Timer"
	default:
		return "Other"
	}
}

// ParseEventType maps a config-file event type string (as used in a
// module's subscriptions map) to an EventType. Unknown strings return
// (Other, false) so callers can reject bad configuration explicitly.
func ParseEventType(s string) (EventType, bool) {
	switch s {
	case "Connection":
		return Connection, true
	case "TextMessage":
		return TextMessage, true
	case "MeMessage":
		return MeMessage, true
	case "ImageMessage":
		return ImageMessage, true
	case "UserStatus":
		return UserStatus, true
	case "Timer":
		return Timer, true
	case "Other":
		return Other, true
	default:
		return Other, false
	}
}

// EventKind tags the variant held by an Event value.
type EventKind int

const (
	EvConnected EventKind = iota
	EvDisconnected
	EvDirectInput
	EvReceivedMessage
	EvUserOnline
	EvUserOffline
	EvNickChange
	EvTimer
	EvOther
)

// Event is the tagged union of everything a source or the Timer Service can
// emit into the sink.
type Event struct {
	Kind    EventKind
	Text    string   // DirectInput, Timer(id), Other(debug)
	Message Message  // ReceivedMessage
	User    string   // UserOnline, UserOffline, NickChange(old)
	Reason  *string  // UserOffline
	NewNick string   // NickChange(new)
}

func Connected() Event    { return Event{Kind: EvConnected} }
func Disconnected() Event { return Event{Kind: EvDisconnected} }
func DirectInput(line string) Event { return Event{Kind: EvDirectInput, Text: line} }
func ReceivedMessage(m Message) Event {
	return Event{Kind: EvReceivedMessage, Message: m}
}
func UserOnline(user string) Event { return Event{Kind: EvUserOnline, User: user} }
func UserOffline(user string, reason *string) Event {
	return Event{Kind: EvUserOffline, User: user, Reason: reason}
}
func NickChange(oldNick, newNick string) Event {
	return Event{Kind: EvNickChange, User: oldNick, NewNick: newNick}
}
func TimerFired(id string) Event { return Event{Kind: EvTimer, Text: id} }
func OtherEvent(debug string) Event { return Event{Kind: EvOther, Text: debug} }

// Type is the total projection from Event to EventType required by the
// data model's "EventType is a total function of Event" invariant.
func (e Event) Type() EventType {
	switch e.Kind {
	case EvConnected, EvDisconnected:
		return Connection
	case EvDirectInput:
		return TextMessage
	case EvReceivedMessage:
		switch e.Message.Content.Kind {
		case ContentMe:
			return MeMessage
		case ContentImage:
			return ImageMessage
		default:
			return TextMessage
		}
	case EvUserOnline, EvUserOffline, EvNickChange:
		return UserStatus
	case EvTimer:
		return Timer
	default:
		return Other
	}
}

// Display renders the line written to the transcript log and the dispatch
// loop's own diagnostic log for this event.
func (e Event) Display() string {
	switch e.Kind {
	case EvReceivedMessage:
		return DisplayWithNick(e.Message.Author, e.Message.Content)
	case EvOther:
		return e.Text
	case EvDirectInput:
		return e.Text
	case EvConnected:
		return "Connected"
	case EvDisconnected:
		return "Disconnected"
	case EvUserOnline:
		return fmt.Sprintf("%s came online", e.User)
	case EvUserOffline:
		if e.Reason != nil {
			return fmt.Sprintf("%s went offline (%s)", e.User, *e.Reason)
		}
		return fmt.Sprintf("%s went offline", e.User)
	case EvNickChange:
		return fmt.Sprintf("%s is now known as %s", e.User, e.NewNick)
	case EvTimer:
		return fmt.Sprintf("Timer(%s)", e.Text)
	default:
		return fmt.Sprintf("%+v", e)
	}
}

// SourceEvent pairs an Event with the SourceId that produced it. Timer
// Service deliveries use Core as the source.
type SourceEvent struct {
	Source SourceId
	Event  Event
}
