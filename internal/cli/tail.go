package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/chime/internal/bose"
	"github.com/tessro/chime/internal/bose/auth"
	"github.com/tessro/chime/internal/core"
	"github.com/tessro/chime/internal/registry"
	"github.com/tessro/chime/internal/soundtouch"
	"github.com/tessro/chime/internal/tail"
)

var (
	tailDevice    string
	tailNoEmoji   bool
	tailTimestamp bool
	tailFormat    string
	tailInterval  time.Duration
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow playback changes in real-time",
	Long: `Watch a speaker for state changes and print them as they happen.

Events tracked:
  - Track changes, completions, and skips
  - Pause/Resume
  - Volume and mute changes
  - Source changes
  - Group membership changes
  - Power state changes

For smart speakers, tail keeps the account session fresh and
reconnects automatically if the speaker drops the connection or moves
to a new address.`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVarP(&tailDevice, "device", "d", "", "device to watch")
	tailCmd.Flags().BoolVar(&tailNoEmoji, "no-emoji", false, "disable emoji output")
	tailCmd.Flags().BoolVarP(&tailTimestamp, "timestamp", "t", false, "show timestamps")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "", "custom format template")
	tailCmd.Flags().DurationVarP(&tailInterval, "interval", "i", 0, "poll interval (default from config)")

	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	reg, err := openRegistry()
	if err != nil {
		return err
	}
	device, err := resolveDevice(reg, tailDevice)
	if err != nil {
		return err
	}

	var (
		player  core.Player
		speaker *bose.Speaker
	)
	if device.Family == core.FamilySmart {
		player, speaker, err = tailSmartPlayer(ctx, reg, device)
	} else {
		var sess *session
		sess, err = openSessionFor(ctx, device)
		if sess != nil {
			defer sess.Close()
			player = sess.player
		}
	}
	if err != nil {
		return err
	}

	interval := tailInterval
	if interval == 0 {
		interval = time.Duration(cfg.Tail.Interval) * time.Millisecond
	}

	formatter := tail.NewFormatter(
		tail.WithEmoji(!tailNoEmoji),
		tail.WithTimestamp(tailTimestamp),
		tail.WithTemplate(tailFormat),
	)

	watcher := tail.NewWatcher(player, interval)
	go func() {
		for event := range watcher.Events() {
			fmt.Println(formatter.Format(event))
		}
	}()

	// Push notifications wake the watcher so changes show up right away;
	// polling keeps working when pushes stop arriving.
	if speaker != nil {
		speaker.OnNotification(func(bose.Message) { watcher.Notify() })
	}
	if device.Family == core.FamilySoundTouch {
		go tailSoundTouchUpdates(ctx, device, watcher)
	}

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", device.Name)

	if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// tailResources are the updates a smart speaker is asked to push.
var tailResources = []string{
	"/content/nowPlaying",
	"/audio/volume",
	"/grouping/activeGroups",
	"/system/power/control",
}

// tailSmartPlayer opens a long-lived connection to a smart speaker: the
// token keeper refreshes the session in the background, and the monitor
// reconnects after network drops or address changes. Rediscovered addresses
// are written back to the registry so later commands dial the right IP.
func tailSmartPlayer(ctx context.Context, reg *registry.Registry, device core.Device) (core.Player, *bose.Speaker, error) {
	token, err := loadToken()
	if err != nil {
		return nil, nil, err
	}

	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return nil, nil, err
	}

	keeper := auth.NewKeeper(auth.NewClient(), storage, token, log)
	go func() {
		if err := keeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Msg("token keeper stopped")
		}
	}()

	speaker := bose.NewSpeaker(device, keeper.AccessToken, bose.WithSpeakerLogger(log))
	if err := speaker.Connect(ctx); err != nil {
		return nil, nil, err
	}

	subscribe := func() {
		if err := speaker.Subscribe(ctx, tailResources); err != nil {
			log.Debug().Err(err).Msg("subscription failed, relying on polling")
		}
	}
	subscribe()

	monitor := bose.NewMonitor(speaker, newDiscovery(), log)
	monitor.OnReconnect(subscribe)
	monitor.OnAddressChange(func(d core.Device) {
		if err := reg.UpdateIP(d.GUID, d.IP); err != nil {
			log.Warn().Err(err).Str("device", d.Name).Msg("failed to persist new address")
		}
	})
	go func() {
		if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Msg("connection monitor stopped")
		}
	}()

	return bose.NewPlayer(speaker), speaker, nil
}

// tailSoundTouchUpdates feeds device push notifications into the watcher.
func tailSoundTouchUpdates(ctx context.Context, device core.Device, watcher *tail.Watcher) {
	notifier := soundtouch.NewNotifier(device, soundtouch.WithNotifierLogger(log))
	updates, err := notifier.Listen(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("push notifications unavailable, polling only")
		return
	}
	for range updates {
		watcher.Notify()
	}
}
