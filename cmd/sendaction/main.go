// Command sendaction signs one action event and publishes it to a relay.
//
//	GOJOBS_SK=<hex key> sendaction -relay wss://relay.example.com \
//		-op createJob -param reward=1000 -param deadline=1700003600
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	goNostr "github.com/nbd-wtf/go-nostr"
	"github.com/sirupsen/logrus"

	"github.com/sebdeveloper6952/gojobs/config"
	"github.com/sebdeveloper6952/gojobs/nostr"
)

type params map[string]string

func (p params) String() string {
	return fmt.Sprint(map[string]string(p))
}

func (p params) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	if !ok || key == "" {
		return fmt.Errorf("param %q is not key=value", v)
	}
	p[key] = value
	return nil
}

func main() {
	var (
		relay   = flag.String("relay", "wss://nostr-pub.wellorder.net", "relay to publish to")
		op      = flag.String("op", "", "engine op, e.g. deposit or createJob")
		timeout = flag.Duration("timeout", 10*time.Second, "publish timeout")
		args    = params{}
	)
	flag.Var(args, "param", "action param as key=value, repeatable")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	sk := os.Getenv(config.EnvSecretKey)
	if sk == "" {
		sk = goNostr.GeneratePrivateKey()
		logger.Warnf("%s not set, signing with a fresh key", config.EnvSecretKey)
	}
	if *op == "" {
		logger.Fatal("-op is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pk, err := goNostr.GetPublicKey(sk)
	if err != nil {
		logger.Fatal(err)
	}

	ev := nostr.NewActionEvent(pk, *op, args)
	if err := ev.Sign(sk); err != nil {
		logger.Fatal(err)
	}

	r, err := goNostr.RelayConnect(ctx, *relay)
	if err != nil {
		logger.Fatal(err)
	}
	defer r.Close()

	if err := r.Publish(ctx, *ev); err != nil {
		logger.Fatal(err)
	}

	logger.WithField("id", ev.ID).Infof("%s sent as %s", *op, pk)
}
