//go:build linux

package netmon

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

type linuxWatcher struct{}

// NewWatcher creates a Linux-specific watcher using netlink.
func NewWatcher() Watcher {
	return &linuxWatcher{}
}

func (w *linuxWatcher) Start(ctx context.Context, nudge func()) error {
	linkCh := make(chan netlink.LinkUpdate)
	linkDone := make(chan struct{})

	addrCh := make(chan netlink.AddrUpdate)
	addrDone := make(chan struct{})

	if err := netlink.LinkSubscribe(linkCh, linkDone); err != nil {
		return err
	}

	if err := netlink.AddrSubscribe(addrCh, addrDone); err != nil {
		close(linkDone)
		return err
	}

	defer close(linkDone)
	defer close(addrDone)

	for {
		select {
		case <-ctx.Done():
			return nil

		case update := <-linkCh:
			log.WithField("interface", update.Link.Attrs().Name).Trace("Netlink link update")
			nudge()

		case update := <-addrCh:
			log.WithField("linkIndex", update.LinkIndex).Trace("Netlink address update")
			nudge()
		}
	}
}
