package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ProtonMail/announce"
	"github.com/ProtonMail/announce/session"
	"github.com/google/uuid"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var (
	backendFlag = flag.String("backend", "memory", "Session backend to use: memory, disk, badger or sqlite.")
	dirFlag     = flag.String("dir", "", "Directory the session data is written to. If not set a temp folder will be used.")
	sessionFlag = flag.String("session", "", "Session ID. If not set a random one is generated.")
	passFlag    = flag.String("pass", "passphrase", "Passphrase used to encrypt the session data.")
	configFlag  = flag.String("config", "", "Optional YAML file with the store configuration.")
	codecFlag   = flag.String("codec", "proto", "Codec for the stored collection: proto or json.")
	profileFlag = flag.Bool("profile", false, "Write a CPU profile to the data directory.")
)

var builders = map[string]session.Builder{
	"memory": &session.InMemoryBuilder{},
	"disk": session.NewWriteControlledSessionBuilder(&session.OnDiskSessionBuilder{
		Options:   []session.Option{session.WithCompressor(session.ZLibCompressor{})},
		Semaphore: session.NewSemaphore(runtime.NumCPU()),
	}),
	"badger": &session.BadgerSessionBuilder{},
	"sqlite": &session.SQLiteSessionBuilder{},
}

var defaultConfig = config{Categories: []string{"message", "error"}}

type config struct {
	Categories []string `yaml:"categories"`
	SessionKey string   `yaml:"session_key"`
}

func main() {
	flag.Parse()

	if level, err := logrus.ParseLevel(os.Getenv("ANNOUNCE_LOG_LEVEL")); err == nil {
		logrus.SetLevel(level)
	}

	dir := *dirFlag
	if dir == "" {
		dir = temp()
	}

	if *profileFlag {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet).Stop()
	}

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	builder, ok := builders[*backendFlag]
	if !ok {
		logrus.WithField("backend", *backendFlag).Fatal("Unknown session backend")
	}

	sessionID := *sessionFlag
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	sess, err := builder.New(filepath.Join(dir, *backendFlag), sessionID, []byte(*passFlag))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open session")
	}

	defer func() {
		if err := sess.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close session")
		}
	}()

	logrus.WithField("sessionID", sessionID).WithField("backend", *backendFlag).Info("Session opened")

	if err := run(sess, cfg); err != nil {
		logrus.WithError(err).Error("Demo failed")
	}
}

func run(sess session.Session, cfg config) error {
	var codec announce.Codec

	switch *codecFlag {
	case "json":
		codec = announce.JSONCodec{}

	default:
		codec = announce.ProtoCodec{}
	}

	store, err := announce.New(
		sess,
		announce.WithCategories(cfg.Categories...),
		announce.WithSessionKey(cfg.SessionKey),
		announce.WithCodec(codec),
	)
	if err != nil {
		return err
	}

	if err := store.Add("success", "Saved %d items", 3); err != nil {
		return err
	}

	if err := store.Add("error", "Bad input: %s", "x"); err != nil {
		return err
	}

	if err := store.AddAll("message", "Welcome back.", "You have new mail."); err != nil {
		return err
	}

	peeked, err := store.Peek("")
	if err != nil {
		return err
	}

	fmt.Printf("categories: %v\n", store.Categories())
	fmt.Printf("peek:       %q\n", peeked)

	for _, category := range store.Categories() {
		messages, err := store.Get(category)
		if err != nil {
			return err
		}

		fmt.Printf("get %-7v %q\n", category+":", messages)
	}

	remaining, err := store.Count("")
	if err != nil {
		return err
	}

	fmt.Printf("remaining:  %v\n", remaining)

	return nil
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig

	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return config{}, err
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return config{}, fmt.Errorf("failed to parse %v: %w", path, err)
	}

	return cfg, nil
}

func temp() string {
	temp, err := os.MkdirTemp("", "announce-*")
	if err != nil {
		panic(err)
	}

	return temp
}
