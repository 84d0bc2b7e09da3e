package chat

import "testing"

func TestEventTypeIsTotalAndStable(t *testing.T) {
	cases := []struct {
		name string
		e    Event
		want EventType
	}{
		{"connected", Connected(), Connection},
		{"disconnected", Disconnected(), Connection},
		{"text message", ReceivedMessage(Message{Content: TextContent("hi")}), TextMessage},
		{"me message", ReceivedMessage(Message{Content: MeContent("waves")}), MeMessage},
		{"image message", ReceivedMessage(Message{Content: ImageContent()}), ImageMessage},
		{"user online", UserOnline("bob"), UserStatus},
		{"user offline", UserOffline("bob", nil), UserStatus},
		{"nick change", NickChange("bob", "robert"), UserStatus},
		{"timer", TimerFired("tick"), Timer},
		{"other", OtherEvent("raw"), Other},
		{"direct input", DirectInput("hello"), TextMessage},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := c.e.Type()
			if got != c.want {
				t.Fatalf("Type() = %v, want %v", got, c.want)
			}
			// Calling Type() twice on the same value must yield the same tag.
			if got2 := c.e.Type(); got2 != got {
				t.Fatalf("Type() not stable: %v then %v", got, got2)
			}
		})
	}
}

func TestChannelEqualityIsStructural(t *testing.T) {
	a := GroupOf([]string{"x", "y"})
	b := GroupOf([]string{"x", "y"})
	c := GroupOf([]string{"y", "x"})
	if !a.Equal(b) {
		t.Fatal("expected equal groups to compare equal")
	}
	if a.Equal(c) {
		t.Fatal("expected differently-ordered groups to compare unequal")
	}
	if ChannelOf("room").Equal(UserOf("room")) {
		t.Fatal("Channel and User variants with the same name must not be equal")
	}
}

func TestDisplayWithNick(t *testing.T) {
	if got := DisplayWithNick("bob", TextContent("hi")); got != "<bob> hi" {
		t.Fatalf("got %q", got)
	}
	if got := DisplayWithNick("bob", MeContent("waves")); got != "* bob waves" {
		t.Fatalf("got %q", got)
	}
	if got := DisplayWithNick("bob", ImageContent()); got != "<bob> [Image]" {
		t.Fatalf("got %q", got)
	}
}
