// Renders a sample message under both themes for eyeballing palette or
// layout changes without running the daemon.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"

	"github.com/rhgrant/msgshot"
)

func main() {
	var (
		out      = flag.String("o", "preview", "output file prefix")
		cacheDir = flag.String("cache", "twemoji", "emoji cache directory")
		content  = flag.String("m", "Hello <@123> \U0001F600 welcome to the server!\nCheck <#456> for the rules, @everyone", "message content")
	)
	flag.Parse()

	fetcher, err := msgshot.NewEmojiFetcher(*cacheDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	r, err := msgshot.NewRenderer(fetcher)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	snapshot := &msgshot.MessageSnapshot{
		Author: msgshot.Author{
			DisplayName: "coyote",
			RoleColor:   &color.RGBA{R: 46, G: 204, B: 113, A: 255},
		},
		Content: *content,
		Mentions: map[string]string{
			"123": "@alice",
			"456": "#rules",
		},
		Timestamp: "3:04 PM",
		Reply: &msgshot.ReplyPreview{
			AuthorLabel: "alice",
			Snippet:     "has anyone seen the new channel layout?",
		},
	}

	for _, theme := range []msgshot.Theme{msgshot.ThemeLight, msgshot.ThemeDark} {
		res, err := r.Render(snapshot, theme)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		name := fmt.Sprintf("%s-%s.png", *out, theme)
		if err := os.WriteFile(name, res.PNG, 0644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("%s: %dx%d, %d bytes, degraded=%v\n", name, res.Width, res.Height, len(res.PNG), res.Degraded)
	}
}
