package ws_room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/scrumpoker/core/internal/model"
	usecase_room "github.com/scrumpoker/core/internal/usecase/room"
	usecase_voting "github.com/scrumpoker/core/internal/usecase/voting"
)

// Events broadcast to room subscribers.
const (
	EventUserJoined    = "user-joined"
	EventUserLeft      = "user-left"
	EventVotingStarted = "voting-started"
	EventVoteSubmitted = "vote-submitted"
	EventVotesRevealed = "votes-revealed"
	EventVotingReset   = "voting-reset"
	EventError         = "error"
)

// Messages accepted from clients.
const (
	MessageJoinRoom    = "join-room"
	MessageLeaveRoom   = "leave-room"
	MessageStartVoting = "start-voting"
	MessageSubmitVote  = "submit-vote"
	MessageRevealVotes = "reveal-votes"
	MessageResetVoting = "reset-voting"
)

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type Message struct {
	Type     string             `json:"type"`
	RoomCode string             `json:"roomCode"`
	Story    string             `json:"story,omitempty"`
	Vote     string             `json:"vote,omitempty"`
	User     *model.Participant `json:"user,omitempty"`
}

type subscription struct {
	client      *Client
	roomCode    string
	participant model.Participant
}

type binding struct {
	roomCode    string
	participant model.Participant
}

type roomEvent struct {
	roomCode string
	event    Event
	exclude  *Client
}

// Hub routes state-machine transitions to subscribed connections and
// connection lifecycle to membership notifications. It holds no voting
// state of its own. All maps are owned by the Run goroutine; register,
// leave and unregister are unbuffered so a client's own messages are
// processed in the order it sent them.
type Hub struct {
	roomUC   *usecase_room.Usecase
	votingUC *usecase_voting.Usecase
	logger   *slog.Logger

	rooms    map[string]map[*Client]bool
	bindings map[*Client]binding

	register   chan subscription
	leave      chan *Client
	unregister chan *Client
	broadcast  chan roomEvent
}

func NewHub(roomUC *usecase_room.Usecase, votingUC *usecase_voting.Usecase) *Hub {
	return &Hub{
		roomUC:     roomUC,
		votingUC:   votingUC,
		logger:     slog.Default(),
		rooms:      make(map[string]map[*Client]bool),
		bindings:   make(map[*Client]binding),
		register:   make(chan subscription),
		leave:      make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan roomEvent),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.register:
			h.handleRegister(sub)

		case client := <-h.leave:
			h.handleLeave(client, false)

		case client := <-h.unregister:
			h.handleLeave(client, true)
			close(client.send)

		case ev := <-h.broadcast:
			h.broadcastToRoom(ev.roomCode, ev.event, ev.exclude)
		}
	}
}

func (h *Hub) handleRegister(sub subscription) {
	// A connection is bound to at most one room; joining another room
	// first detaches it from the old one.
	if _, ok := h.bindings[sub.client]; ok {
		h.handleLeave(sub.client, false)
	}

	if _, ok := h.rooms[sub.roomCode]; !ok {
		h.rooms[sub.roomCode] = make(map[*Client]bool)
	}
	h.rooms[sub.roomCode][sub.client] = true
	h.bindings[sub.client] = binding{roomCode: sub.roomCode, participant: sub.participant}

	h.logger.Info("client joined channel",
		"room", sub.roomCode,
		"user_id", sub.participant.ID,
		"username", sub.participant.Username)

	h.broadcastToRoom(sub.roomCode, Event{
		Type: EventUserJoined,
		Payload: map[string]interface{}{
			"userId":   sub.participant.ID,
			"username": sub.participant.Username,
		},
	}, sub.client)
}

// handleLeave detaches the client from its room and tells the
// remaining subscribers. A raw disconnect (no leave-room message first)
// additionally removes the participant from the room store, so a
// crashed client never lingers as a ghost member.
func (h *Hub) handleLeave(client *Client, disconnected bool) {
	b, ok := h.bindings[client]
	if !ok {
		return
	}
	delete(h.bindings, client)

	if roomClients, ok := h.rooms[b.roomCode]; ok {
		delete(roomClients, client)
		if len(roomClients) == 0 {
			delete(h.rooms, b.roomCode)
		}
	}

	h.logger.Info("client left channel",
		"room", b.roomCode,
		"user_id", b.participant.ID,
		"disconnected", disconnected)

	h.broadcastToRoom(b.roomCode, Event{
		Type: EventUserLeft,
		Payload: map[string]interface{}{
			"userId":   b.participant.ID,
			"username": b.participant.Username,
		},
	}, client)

	if disconnected {
		_, _, err := h.roomUC.Leave(context.Background(), b.roomCode, b.participant.ID)
		if err != nil && !errors.Is(err, usecase_room.ErrRoomNotFound) && !errors.Is(err, usecase_room.ErrParticipantNotFound) {
			h.logger.Error("failed to remove disconnected participant",
				"error", err, "room", b.roomCode, "user_id", b.participant.ID)
		}
	}
}

// broadcastToRoom delivers at most once per currently connected
// subscriber, best effort: a subscriber with a full send buffer is
// dropped rather than allowed to stall the rest of the room. Its
// connection is closed, which funnels it through the regular
// unregister path for the leave notification and store cleanup.
func (h *Hub) broadcastToRoom(roomCode string, event Event, exclude *Client) {
	roomClients, ok := h.rooms[roomCode]
	if !ok {
		return
	}
	for client := range roomClients {
		if client == exclude {
			continue
		}
		select {
		case client.send <- event:
		default:
			delete(roomClients, client)
			go client.disconnect()
		}
	}
}

// handleMessage runs on the client's read goroutine; it may only touch
// the client's own fields and the hub's channels.
func (h *Hub) handleMessage(c *Client, msg Message) {
	switch msg.Type {
	case MessageJoinRoom:
		if msg.RoomCode == "" || msg.User == nil || msg.User.ID == "" {
			c.sendEvent(errorEvent("room code and user are required to join"))
			return
		}
		c.roomCode = msg.RoomCode
		c.participant = *msg.User
		h.register <- subscription{client: c, roomCode: msg.RoomCode, participant: *msg.User}

	case MessageLeaveRoom:
		c.roomCode = ""
		c.participant = model.Participant{}
		h.leave <- c

	case MessageStartVoting:
		h.startVoting(c, msg)

	case MessageSubmitVote:
		h.submitVote(c, msg)

	case MessageRevealVotes:
		h.revealVotes(c, msg)

	case MessageResetVoting:
		h.resetVoting(c, msg)

	default:
		c.sendEvent(errorEvent("unknown message type"))
	}
}

func (h *Hub) startVoting(c *Client, msg Message) {
	code, ok := c.boundRoom(msg)
	if !ok {
		return
	}

	room, err := h.votingUC.Start(context.Background(), code, msg.Story)
	if err != nil {
		c.sendEvent(errorEvent(err.Error()))
		return
	}

	h.logger.Info("voting started", "room", code, "story", room.CurrentStory)
	h.broadcast <- roomEvent{
		roomCode: code,
		event: Event{
			Type: EventVotingStarted,
			Payload: map[string]interface{}{
				"story": room.CurrentStory,
			},
		},
	}
}

func (h *Hub) submitVote(c *Client, msg Message) {
	code, ok := c.boundRoom(msg)
	if !ok {
		return
	}

	if _, err := h.votingUC.Submit(context.Background(), code, c.participant.ID, msg.Vote); err != nil {
		c.sendEvent(errorEvent(err.Error()))
		return
	}

	// Only the fact of the vote leaves the store; the value stays
	// private until reveal.
	h.broadcast <- roomEvent{
		roomCode: code,
		exclude:  c,
		event: Event{
			Type: EventVoteSubmitted,
			Payload: map[string]interface{}{
				"userId":   c.participant.ID,
				"username": c.participant.Username,
			},
		},
	}
}

func (h *Hub) revealVotes(c *Client, msg Message) {
	code, ok := c.boundRoom(msg)
	if !ok {
		return
	}

	room, summary, err := h.votingUC.Reveal(context.Background(), code)
	if err != nil {
		c.sendEvent(errorEvent(err.Error()))
		return
	}

	summaryPayload := map[string]interface{}{
		"voteCount":        summary.VoteCount,
		"participantCount": summary.ParticipantCount,
		"consensus":        summary.Consensus,
	}
	if summary.Average != nil {
		summaryPayload["average"] = *summary.Average
	}
	payload := map[string]interface{}{
		"votes":   room.Votes,
		"summary": summaryPayload,
	}

	h.logger.Info("votes revealed", "room", code, "votes", summary.VoteCount)
	h.broadcast <- roomEvent{
		roomCode: code,
		event:    Event{Type: EventVotesRevealed, Payload: payload},
	}
}

func (h *Hub) resetVoting(c *Client, msg Message) {
	code, ok := c.boundRoom(msg)
	if !ok {
		return
	}

	if _, err := h.votingUC.Reset(context.Background(), code); err != nil {
		c.sendEvent(errorEvent(err.Error()))
		return
	}

	h.broadcast <- roomEvent{
		roomCode: code,
		event:    Event{Type: EventVotingReset},
	}
}

func errorEvent(message string) Event {
	return Event{
		Type: EventError,
		Payload: map[string]interface{}{
			"message": message,
		},
	}
}
