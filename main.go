package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"azote/internal/logging"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

const usage = `Usage: azote [flags] [command [args]]

Flags:
  -h, --help             show this help
  -l, --lang ln_LN       force a language (en, pl, de, fr)
  -c, --clear            remove thumbnails of pictures no longer in the folder and exit
  -a, --clear-all        remove every thumbnail and exit
  -v, --version          print the version and exit

Commands:
  displays                           list detected displays
  thumbs                             create or refresh thumbnails of the folder
  list [-sort new|old|az|za]         list pictures of the folder
  folder DIR                         change the picture folder
  set [-mode M] [-color #hex] OUTPUT [PATH]
                                     set one display
  all [-mode M] PATH                 set every display
  split [-exclude A,B] [-mode M] PATH
                                     split a picture across displays
  flip [-mode M] OUTPUT PATH         set the mirrored picture
  scale [-smart] [-mode M] OUTPUT PATH
                                     crop a picture to the display resolution
  restore                            apply the last wallpapers again
  random [-interval SECONDS] [-mode M]
                                     set a random picture, optionally repeatedly
  random -next | -show PATH | -stop  control a running rotation
  pick [-copy]                       pick a colour from the screen
  palette [-n N] [-sort] [-copy] PATH
                                     show the dominant colours of a picture
  dotfiles alacritty|xresources [KEY=#hex ...]
                                     show or change terminal colours
  trash PATH                         move a picture to the trash
  watch                              keep thumbnails in sync with the folder

Without a command, azote prepares the thumbnails and prints the session.
`

func main() {
	var lang string
	var clear, clearAll, showVersion bool

	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.StringVar(&lang, "l", "", "")
	flag.StringVar(&lang, "lang", "", "")
	flag.BoolVar(&clear, "c", false, "")
	flag.BoolVar(&clear, "clear", false, "")
	flag.BoolVar(&clearAll, "a", false, "")
	flag.BoolVar(&clearAll, "clear-all", false, "")
	flag.BoolVar(&showVersion, "v", false, "")
	flag.BoolVar(&showVersion, "version", false, "")
	flag.Parse()

	if showVersion {
		fmt.Println("azote", version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, lang, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "azote:", err)
		os.Exit(1)
	}
	defer logging.Close()

	switch {
	case clearAll:
		err = a.clear(true)
	case clear:
		err = a.clear(false)
	default:
		err = a.run(flag.Args())
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logging.Fatal("%v", err)
	}
}
