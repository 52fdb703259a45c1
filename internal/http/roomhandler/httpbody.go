package roomhandler

import "collabeditgo/internal/rooms"

type RoomSummary struct {
	ID           string `json:"id"`
	Participants int    `json:"participants"`
	HasDocument  bool   `json:"has_document"`
} // @name RoomSummary

type RoomDetail struct {
	ID          string       `json:"id"`
	Peers       []rooms.Peer `json:"peers"`
	HasDocument bool         `json:"has_document"`
} // @name RoomDetail

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
} // @name HealthResponse

type StatsResponse struct {
	ActiveRooms        int `json:"active_rooms"`
	ActiveParticipants int `json:"active_participants"`
} // @name StatsResponse

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
