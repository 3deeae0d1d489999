// Package protocol describes the messages exchanged with the world server
// and how they are framed on the websocket.
package protocol

// Lifecycle events raised by the channel itself, never sent on the wire.
const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
)

const (
	// EventSession is the first frame after accept and carries the session
	// id the server knows us by.
	EventSession = "session"

	EventSetNickname     = "set_nickname"
	EventNicknameSuccess = "nickname_success"
	EventNicknameError   = "nickname_error"

	EventCurrentPlayers     = "current_players"
	EventNewPlayer          = "new_player"
	EventPlayerMove         = "player_move"
	EventPlayerMoved        = "player_moved"
	EventPlayerDisconnected = "player_disconnected"
	EventUpdatePlayerInfo   = "update_player_info"

	EventMapData   = "map_data"
	EventNPCData   = "npc_data"
	EventNPCsMoved = "npcs_moved"

	EventTimeInit   = "time_init"
	EventTimeUpdate = "time_update"

	EventShowEmoji = "show_emoji"

	EventGuestbookData    = "guestbook_data"
	EventNewGuestbookPost = "new_guestbook_post"
)
