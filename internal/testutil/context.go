package testutil

import (
	"errors"

	tele "gopkg.in/telebot.v3"
)

// Reply is a message sent or edited through FakeContext
type Reply struct {
	Text   string
	Markup *tele.ReplyMarkup
}

// FakeContext implements the parts of tele.Context the bot uses.
// Calling anything else panics on the nil embedded interface.
type FakeContext struct {
	tele.Context

	User *tele.User
	Room *tele.Chat
	Msg  *tele.Message
	Cb   *tele.Callback

	// EditErr is returned by every Edit call when set
	EditErr error

	Sent      []Reply
	Edited    []Reply
	Responses []*tele.CallbackResponse

	store map[string]interface{}
}

// NewMessageContext creates a context for a private text message
func NewMessageContext(userID int64, text string) *FakeContext {
	user := &tele.User{ID: userID, FirstName: "Анна"}
	chat := &tele.Chat{ID: userID, Type: tele.ChatPrivate}
	return &FakeContext{
		User: user,
		Room: chat,
		Msg:  &tele.Message{ID: 500, Sender: user, Chat: chat, Text: text},
	}
}

// NewCallbackContext creates a context for a button press on message 400
func NewCallbackContext(userID int64, data string) *FakeContext {
	user := &tele.User{ID: userID, FirstName: "Анна"}
	chat := &tele.Chat{ID: userID, Type: tele.ChatPrivate}
	msg := &tele.Message{ID: 400, Chat: chat}
	return &FakeContext{
		User: user,
		Room: chat,
		Cb:   &tele.Callback{ID: "cb", Sender: user, Message: msg, Data: data},
	}
}

func (c *FakeContext) Sender() *tele.User { return c.User }

func (c *FakeContext) Chat() *tele.Chat { return c.Room }

func (c *FakeContext) Callback() *tele.Callback { return c.Cb }

func (c *FakeContext) Message() *tele.Message {
	if c.Cb != nil {
		return c.Cb.Message
	}
	return c.Msg
}

func (c *FakeContext) Text() string {
	if c.Msg == nil {
		return ""
	}
	return c.Msg.Text
}

func (c *FakeContext) Data() string {
	if c.Cb == nil {
		return ""
	}
	return c.Cb.Data
}

func (c *FakeContext) Send(what interface{}, opts ...interface{}) error {
	c.Sent = append(c.Sent, toReply(what, opts))
	return nil
}

func (c *FakeContext) Edit(what interface{}, opts ...interface{}) error {
	if c.EditErr != nil {
		return c.EditErr
	}
	c.Edited = append(c.Edited, toReply(what, opts))
	return nil
}

func (c *FakeContext) Respond(resp ...*tele.CallbackResponse) error {
	if len(resp) == 0 {
		resp = []*tele.CallbackResponse{{}}
	}
	c.Responses = append(c.Responses, resp...)
	return nil
}

func (c *FakeContext) Set(key string, val interface{}) {
	if c.store == nil {
		c.store = make(map[string]interface{})
	}
	c.store[key] = val
}

func (c *FakeContext) Get(key string) interface{} {
	return c.store[key]
}

// Last returns the latest sent or edited reply
func (c *FakeContext) Last() Reply {
	if len(c.Edited) > 0 && len(c.Sent) == 0 {
		return c.Edited[len(c.Edited)-1]
	}
	if len(c.Sent) > 0 {
		return c.Sent[len(c.Sent)-1]
	}
	return Reply{}
}

func toReply(what interface{}, opts []interface{}) Reply {
	r := Reply{}
	if s, ok := what.(string); ok {
		r.Text = s
	}
	for _, o := range opts {
		if m, ok := o.(*tele.ReplyMarkup); ok {
			r.Markup = m
		}
	}
	return r
}

// ErrNotModified mimics the API error of an edit that changes nothing
var ErrNotModified = errors.New("telegram: message is not modified (400)")
