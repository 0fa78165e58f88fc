package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/entwanne/root-robot/pkg/driver"
	"github.com/entwanne/root-robot/pkg/events"
	"github.com/entwanne/root-robot/pkg/robot"
)

// Session handles the interactive command loop.
type Session struct {
	cfg       Config
	transport robot.Transport
	opts      robot.Options
	rl        *readline.Instance

	devices []driver.Device
	robot   *robot.Robot
	watch   *events.Task
}

// NewSession creates the interactive session handler.
func NewSession(cfg Config, t robot.Transport, opts robot.Options) (*Session, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "root> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Session{
		cfg:       cfg,
		transport: t,
		opts:      opts,
		rl:        rl,
	}, nil
}

// Run starts the interactive command loop.
func (s *Session) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()
	defer s.disconnect()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "scan":
			s.cmdScan(ctx)

		case "connect":
			s.cmdConnect(ctx, args)

		case "disconnect":
			s.disconnect()

		case "status":
			s.cmdStatus(ctx)

		case "name":
			s.cmdName(ctx, args)

		case "battery":
			s.cmdBattery(ctx)

		case "version":
			s.cmdVersion(ctx, args)

		case "speed":
			s.cmdSpeed(ctx, args)

		case "stop":
			s.cmdSpeed(ctx, []string{"0", "0"})

		case "drive":
			s.cmdDrive(ctx, args)

		case "rotate":
			s.cmdRotate(ctx, args)

		case "arc":
			s.cmdArc(ctx, args)

		case "marker":
			s.cmdTool(ctx, "marker", args)

		case "eraser":
			s.cmdTool(ctx, "eraser", args)

		case "led":
			s.cmdLED(ctx, args)

		case "note":
			s.cmdNote(ctx, args)

		case "mute":
			s.cmdMute(ctx)

		case "say":
			s.cmdSay(ctx, args)

		case "color":
			s.cmdColor(ctx, args)

		case "calibrate":
			s.cmdCalibrate(args)

		case "watch":
			s.cmdWatch(ctx, args)

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
Root Robot Commands:
  Discovery & Connection:
    scan                       - Discover robots
    connect [n]                - Connect to robot n from the last scan
    disconnect                 - Close the current session
    status                     - Show session status

  Queries:
    name [new-name]            - Show or change the robot name
    battery                    - Show battery level
    version [main|color]       - Show board firmware version

  Motion:
    speed <left> <right>       - Set wheel speeds (mm/s)
    stop                       - Stop both wheels
    drive <mm> [wait]          - Drive a distance
    rotate <decideg> [wait]    - Rotate in place (tenths of degrees)
    arc <decideg> <mm> [wait]  - Drive an arc of given angle and radius

  Tools & Output:
    marker up|down [wait]      - Raise or lower the marker
    eraser up|down [wait]      - Raise or lower the eraser
    led off|on|blink|spin [r g b] - Set the light ring
    note <hz> [ms]             - Play a note
    mute                       - Stop the current note
    say <phrase...>            - Speak a phrase

  Color Reader:
    color <pos>                - Read one position (0-31)
    color all                  - Read all 32 positions
    calibrate [show|ambient|red|green|blue <val>|reset]

  Events:
    watch start|stop           - Stream robot events to the console

  General:
    help                       - Show this help
    quit                       - Exit`)
}

// cmdScan handles the scan command.
func (s *Session) cmdScan(ctx context.Context) {
	fmt.Fprintln(s.rl.Stdout(), "Scanning...")

	devices, err := robot.Discover(ctx, s.transport, s.cfg.DiscoveryTimeout)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Scan error: %v\n", err)
		return
	}
	s.devices = devices

	if len(devices) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "No robots found")
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Found %d robot(s):\n", len(devices))
	for idx, d := range devices {
		fmt.Fprintf(s.rl.Stdout(), "  %d. %s (%s)\n", idx+1, d.Name(), d.ID())
	}
}

// cmdConnect handles the connect command.
func (s *Session) cmdConnect(ctx context.Context, args []string) {
	if s.robot != nil {
		fmt.Fprintln(s.rl.Stdout(), "Already connected, disconnect first")
		return
	}
	if len(s.devices) == 0 {
		s.cmdScan(ctx)
		if len(s.devices) == 0 {
			return
		}
	}

	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 || v > len(s.devices) {
			fmt.Fprintf(s.rl.Stdout(), "Invalid robot number: %s\n", args[0])
			return
		}
		n = v
	}
	dev := s.devices[n-1]

	r, err := robot.OpenWith(ctx, dev, s.opts)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Connect failed: %v\n", err)
		return
	}
	s.robot = r
	r.Color.Calibrate(s.cfg.Calibration.Update())

	fmt.Fprintf(s.rl.Stdout(), "Connected to %s (session %s)\n", dev.Name(), r.SessionID())
}

// disconnect closes the current session, if any.
func (s *Session) disconnect() {
	if s.robot == nil {
		return
	}
	s.stopWatch()
	if err := s.robot.Close(); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Close error: %v\n", err)
	}
	s.robot = nil
	fmt.Fprintln(s.rl.Stdout(), "Disconnected")
}

// requireRobot reports whether a session is open, printing a hint when not.
func (s *Session) requireRobot() bool {
	if s.robot == nil {
		fmt.Fprintln(s.rl.Stdout(), "Not connected (use 'connect')")
		return false
	}
	return true
}

// cmdStatus handles the status command.
func (s *Session) cmdStatus(ctx context.Context) {
	fmt.Fprintln(s.rl.Stdout(), "\nSession Status")
	fmt.Fprintln(s.rl.Stdout(), "-------------------------------------------")
	fmt.Fprintf(s.rl.Stdout(), "  Transport:   %s\n", s.cfg.Transport)

	if s.robot == nil {
		fmt.Fprintln(s.rl.Stdout(), "  Connected:   no")
		fmt.Fprintln(s.rl.Stdout())
		return
	}

	fmt.Fprintf(s.rl.Stdout(), "  Connected:   %s\n", s.robot.Device().Name())
	fmt.Fprintf(s.rl.Stdout(), "  Session ID:  %s\n", s.robot.SessionID())

	if name, err := s.robot.Name(ctx); err == nil {
		fmt.Fprintf(s.rl.Stdout(), "  Robot name:  %s\n", name)
	}
	if serial, err := s.robot.SerialNumber(ctx); err == nil {
		fmt.Fprintf(s.rl.Stdout(), "  Serial:      %s\n", serial)
	}
	if sku, err := s.robot.SKU(ctx); err == nil {
		fmt.Fprintf(s.rl.Stdout(), "  SKU:         %s\n", sku)
	}
	if enabled, err := s.robot.Events.Enabled(ctx); err == nil {
		fmt.Fprintf(s.rl.Stdout(), "  Events:      %s\n", enabled)
	}

	watching := "no"
	if s.watch != nil {
		watching = "yes"
	}
	fmt.Fprintf(s.rl.Stdout(), "  Watching:    %s\n", watching)
	fmt.Fprintln(s.rl.Stdout())
}

// cmdName shows or changes the robot name.
func (s *Session) cmdName(ctx context.Context, args []string) {
	if !s.requireRobot() {
		return
	}

	if len(args) == 0 {
		name, err := s.robot.Name(ctx)
		if err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
			return
		}
		fmt.Fprintf(s.rl.Stdout(), "Name: %s\n", name)
		return
	}

	name := strings.Join(args, " ")
	if err := s.robot.SetName(ctx, name); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Name set to %s\n", name)
}

// cmdBattery handles the battery command.
func (s *Session) cmdBattery(ctx context.Context) {
	if !s.requireRobot() {
		return
	}
	level, err := s.robot.BatteryLevel(ctx)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Battery: %d%% (%d mV)\n", level.Percent, level.Voltage)
}

// cmdVersion handles the version command.
func (s *Session) cmdVersion(ctx context.Context, args []string) {
	if !s.requireRobot() {
		return
	}

	board := driver.BoardMain
	label := "main"
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "main":
		case "color":
			board = driver.BoardColor
			label = "color"
		default:
			fmt.Fprintln(s.rl.Stdout(), "Usage: version [main|color]")
			return
		}
	}

	version, err := s.robot.Version(ctx, board)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "%s board: %s\n", label, version)
}

// cmdSpeed handles the speed command.
func (s *Session) cmdSpeed(ctx context.Context, args []string) {
	if !s.requireRobot() {
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: speed <left> <right>")
		return
	}

	left, err1 := parseInt32(args[0])
	right, err2 := parseInt32(args[1])
	if err1 != nil || err2 != nil {
		fmt.Fprintln(s.rl.Stdout(), "Invalid speed")
		return
	}

	if err := s.robot.Motor.SetSpeed(ctx, left, right); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
	}
}

// cmdDrive handles the drive command.
func (s *Session) cmdDrive(ctx context.Context, args []string) {
	if !s.requireRobot() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: drive <mm> [wait]")
		return
	}

	distance, err := parseInt32(args[0])
	if err != nil {
		fmt.Fprintln(s.rl.Stdout(), "Invalid distance")
		return
	}
	wait := hasWait(args[1:])

	if err := s.robot.Motor.Drive(ctx, distance, wait); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	if wait {
		fmt.Fprintln(s.rl.Stdout(), "Done")
	}
}

// cmdRotate handles the rotate command.
func (s *Session) cmdRotate(ctx context.Context, args []string) {
	if !s.requireRobot() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: rotate <decideg> [wait]")
		return
	}

	angle, err := parseInt32(args[0])
	if err != nil {
		fmt.Fprintln(s.rl.Stdout(), "Invalid angle")
		return
	}
	wait := hasWait(args[1:])

	if err := s.robot.Motor.Rotate(ctx, angle, wait); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	if wait {
		fmt.Fprintln(s.rl.Stdout(), "Done")
	}
}

// cmdArc handles the arc command.
func (s *Session) cmdArc(ctx context.Context, args []string) {
	if !s.requireRobot() {
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: arc <decideg> <radius-mm> [wait]")
		return
	}

	angle, err1 := parseInt32(args[0])
	radius, err2 := parseInt32(args[1])
	if err1 != nil || err2 != nil {
		fmt.Fprintln(s.rl.Stdout(), "Invalid angle or radius")
		return
	}
	wait := hasWait(args[2:])

	if err := s.robot.Motor.DriveArc(ctx, angle, radius, wait); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	if wait {
		fmt.Fprintln(s.rl.Stdout(), "Done")
	}
}

// cmdTool handles the marker and eraser commands.
func (s *Session) cmdTool(ctx context.Context, tool string, args []string) {
	if !s.requireRobot() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintf(s.rl.Stdout(), "Usage: %s up|down [wait]\n", tool)
		return
	}
	wait := hasWait(args[1:])

	var err error
	switch strings.ToLower(args[0]) {
	case "up":
		if tool == "marker" {
			err = s.robot.Marker.Up(ctx, wait)
		} else {
			err = s.robot.Eraser.Up(ctx, wait)
		}
	case "down":
		if tool == "marker" {
			err = s.robot.Marker.Down(ctx, wait)
		} else {
			err = s.robot.Eraser.Down(ctx, wait)
		}
	default:
		fmt.Fprintf(s.rl.Stdout(), "Usage: %s up|down [wait]\n", tool)
		return
	}

	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
	}
}

// cmdLED handles the led command.
func (s *Session) cmdLED(ctx context.Context, args []string) {
	if !s.requireRobot() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: led off|on|blink|spin [r g b]")
		return
	}

	var color []robot.RGB
	if len(args) >= 4 {
		r, err1 := strconv.ParseUint(args[1], 10, 8)
		g, err2 := strconv.ParseUint(args[2], 10, 8)
		b, err3 := strconv.ParseUint(args[3], 10, 8)
		if err1 != nil || err2 != nil || err3 != nil {
			fmt.Fprintln(s.rl.Stdout(), "Invalid color components (0-255)")
			return
		}
		color = []robot.RGB{{R: uint8(r), G: uint8(g), B: uint8(b)}}
	}

	var err error
	switch strings.ToLower(args[0]) {
	case "off":
		err = s.robot.LED.Off(ctx)
	case "on":
		err = s.robot.LED.On(ctx, color...)
	case "blink":
		err = s.robot.LED.Blink(ctx, color...)
	case "spin":
		err = s.robot.LED.Spin(ctx, color...)
	default:
		fmt.Fprintln(s.rl.Stdout(), "Usage: led off|on|blink|spin [r g b]")
		return
	}

	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
	}
}

// cmdNote handles the note command.
func (s *Session) cmdNote(ctx context.Context, args []string) {
	if !s.requireRobot() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: note <hz> [ms]")
		return
	}

	frequency, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		fmt.Fprintln(s.rl.Stdout(), "Invalid frequency")
		return
	}

	var duration time.Duration
	if len(args) >= 2 {
		ms, err := strconv.Atoi(args[1])
		if err != nil || ms < 0 {
			fmt.Fprintln(s.rl.Stdout(), "Invalid duration")
			return
		}
		duration = time.Duration(ms) * time.Millisecond
	}

	if err := s.robot.Sound.Play(ctx, uint32(frequency), duration); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
	}
}

// cmdMute handles the mute command.
func (s *Session) cmdMute(ctx context.Context) {
	if !s.requireRobot() {
		return
	}
	if err := s.robot.Sound.Stop(ctx); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
	}
}

// cmdSay handles the say command.
func (s *Session) cmdSay(ctx context.Context, args []string) {
	if !s.requireRobot() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: say <phrase...>")
		return
	}

	phrase := strings.Join(args, " ")
	if err := s.robot.Sound.Say(ctx, phrase, true); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
	}
}

// cmdColor handles the color command.
func (s *Session) cmdColor(ctx context.Context, args []string) {
	if !s.requireRobot() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: color <pos>|all")
		return
	}

	if strings.ToLower(args[0]) == "all" {
		colors, err := s.robot.Color.ReadAll(ctx)
		if err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
			return
		}
		for idx, c := range colors {
			fmt.Fprintf(s.rl.Stdout(), "  %2d: #%02X%02X%02X\n", idx, c.R, c.G, c.B)
		}
		return
	}

	position, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(s.rl.Stdout(), "Invalid position")
		return
	}

	c, err := s.robot.Color.Read(ctx, position)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "#%02X%02X%02X\n", c.R, c.G, c.B)
}

// cmdCalibrate shows or changes the color calibration.
func (s *Session) cmdCalibrate(args []string) {
	if !s.requireRobot() {
		return
	}

	if len(args) == 0 || args[0] == "show" {
		cal := s.robot.Color.Calibration()
		fmt.Fprintf(s.rl.Stdout(), "Calibration: ambient=%d red=%d green=%d blue=%d\n",
			cal.Ambient, cal.Red, cal.Green, cal.Blue)
		return
	}

	if args[0] == "reset" {
		s.robot.Color.Reset()
		fmt.Fprintln(s.rl.Stdout(), "Calibration reset")
		return
	}

	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: calibrate [show|reset|ambient|red|green|blue <value>]")
		return
	}

	value, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintln(s.rl.Stdout(), "Invalid value")
		return
	}

	var update robot.CalibrationUpdate
	switch strings.ToLower(args[0]) {
	case "ambient":
		update.Ambient = &value
	case "red":
		update.Red = &value
	case "green":
		update.Green = &value
	case "blue":
		update.Blue = &value
	default:
		fmt.Fprintln(s.rl.Stdout(), "Usage: calibrate [show|reset|ambient|red|green|blue <value>]")
		return
	}

	s.robot.Color.Calibrate(update)
	fmt.Fprintln(s.rl.Stdout(), "OK")
}

// cmdWatch handles the watch command.
func (s *Session) cmdWatch(ctx context.Context, args []string) {
	if !s.requireRobot() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: watch start|stop")
		return
	}

	switch strings.ToLower(args[0]) {
	case "start":
		if s.watch != nil {
			fmt.Fprintln(s.rl.Stdout(), "Already watching")
			return
		}
		if err := s.robot.Events.EnableAll(ctx); err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
			return
		}
		s.robot.Events.SetCallbacks(s.watchCallbacks())
		s.watch = s.robot.Events.ProcessAsync(ctx, true)
		fmt.Fprintln(s.rl.Stdout(), "Watching events (watch stop to end)")

	case "stop":
		s.stopWatch()

	default:
		fmt.Fprintln(s.rl.Stdout(), "Usage: watch start|stop")
	}
}

// stopWatch ends the background event watcher, if running.
func (s *Session) stopWatch() {
	if s.watch == nil {
		return
	}
	s.watch.Stop()
	if err := s.watch.Wait(); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Event stream error: %v\n", err)
	}
	for kind := range s.watchCallbacks() {
		s.robot.Events.SetCallback(kind, nil)
	}
	s.watch = nil
	fmt.Fprintln(s.rl.Stdout(), "Stopped watching")
}

// watchCallbacks builds the event printers for watch mode.
func (s *Session) watchCallbacks() map[driver.EventKind]events.Handler {
	handlers := make(map[driver.EventKind]events.Handler)
	for _, kind := range []driver.EventKind{
		driver.KindBumper,
		driver.KindTouch,
		driver.KindLight,
		driver.KindCliff,
		driver.KindStall,
		driver.KindBattery,
		driver.KindColor,
		driver.KindMotionDone,
		driver.KindSpeechDone,
	} {
		handlers[kind] = s.printEvent
	}
	return handlers
}

// printEvent displays one robot event above the prompt.
func (s *Session) printEvent(ev driver.Event) error {
	fmt.Fprintf(s.rl.Stdout(), "\n[%s] %s\n",
		time.Now().Format("15:04:05"), describeEvent(ev))
	s.rl.Refresh()
	return nil
}

// describeEvent renders an event in one line.
func describeEvent(ev driver.Event) string {
	switch e := ev.(type) {
	case driver.BumperEvent:
		return fmt.Sprintf("bumper left=%t right=%t", e.Left, e.Right)
	case driver.TouchEvent:
		return fmt.Sprintf("touch fl=%t fr=%t rl=%t rr=%t",
			e.FrontLeft, e.FrontRight, e.RearLeft, e.RearRight)
	case driver.LightEvent:
		return fmt.Sprintf("light state=%d left=%d right=%d", e.State, e.Left, e.Right)
	case driver.CliffEvent:
		return fmt.Sprintf("cliff detected=%t sensor=%d threshold=%d",
			e.Detected, e.Sensor, e.Threshold)
	case driver.StallEvent:
		return fmt.Sprintf("stall motor=%d cause=%s", e.Motor, e.Cause)
	case driver.BatteryEvent:
		return fmt.Sprintf("battery %d%% (%d mV)", e.Percent, e.Voltage)
	case driver.ColorEvent:
		return fmt.Sprintf("color %v", e.Colors)
	case driver.MotionDoneEvent:
		return fmt.Sprintf("motion done (%s)", e.Op)
	case driver.SpeechDoneEvent:
		return "speech done"
	default:
		return fmt.Sprintf("%s event", ev.Kind())
	}
}

func parseInt32(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	return int32(v), err
}

// hasWait reports whether a trailing "wait" argument is present.
func hasWait(args []string) bool {
	for _, a := range args {
		if strings.EqualFold(a, "wait") {
			return true
		}
	}
	return false
}
