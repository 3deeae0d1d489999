package client

import (
	"glade/protocol"

	"go.uber.org/zap"
)

// UI is the overlay layer outside the sync core: panels, forms and the
// guestbook. The core only tells it what happened.
type UI interface {
	OpenSurface(name string)
	SurfaceOpen(name string) bool
	NicknameAccepted(protocol.NicknameSuccess)
	NicknameRejected(message string)
	GuestbookFeed(posts []protocol.GuestbookPost)
	GuestbookPost(post protocol.GuestbookPost)
}

// LogUI is a UI that records surface state and logs everything else.
type LogUI struct {
	log  *zap.Logger
	open map[string]bool
}

func NewLogUI(log *zap.Logger) *LogUI {
	return &LogUI{
		log:  log,
		open: make(map[string]bool),
	}
}

func (u *LogUI) OpenSurface(name string) {
	u.open[name] = true
	u.log.Info("surface opened", zap.String("surface", name))
}

func (u *LogUI) CloseSurface(name string) {
	delete(u.open, name)
}

func (u *LogUI) CloseAll() {
	for name := range u.open {
		delete(u.open, name)
	}
}

func (u *LogUI) SurfaceOpen(name string) bool {
	return u.open[name]
}

// OpenSurfaces lists the open surfaces in no particular order.
func (u *LogUI) OpenSurfaces() []string {
	names := make([]string, 0, len(u.open))
	for name := range u.open {
		names = append(names, name)
	}
	return names
}

func (u *LogUI) NicknameAccepted(s protocol.NicknameSuccess) {
	u.log.Info("nickname accepted", zap.String("nickname", s.Nickname), zap.String("skin", s.Skin))
}

func (u *LogUI) NicknameRejected(message string) {
	u.log.Warn("nickname rejected", zap.String("message", message))
}

func (u *LogUI) GuestbookFeed(posts []protocol.GuestbookPost) {
	u.log.Debug("guestbook feed", zap.Int("posts", len(posts)))
}

func (u *LogUI) GuestbookPost(post protocol.GuestbookPost) {
	u.log.Debug("guestbook post", zap.String("nickname", post.Nickname))
}
