package generator

import (
	"regexp"
	"strings"

	"vibe-in-the-dark/internal/game"
)

var (
	htmlBlock  = regexp.MustCompile(`(?is)<html>(.*?)</html>`)
	styleBlock = regexp.MustCompile(`(?is)<style>(.*?)</style>`)
	bodyBlock  = regexp.MustCompile(`(?is)<body>(.*?)</body>`)
	codeFence  = regexp.MustCompile("(?s)```(?:jsx|tsx|javascript|typescript)?\\n(.*?)```")
)

// ParseRetro extracts markup and styles from an <html> document reply.
func ParseRetro(reply string) (game.Artifact, bool) {
	m := htmlBlock.FindStringSubmatch(reply)
	if m == nil {
		return game.Artifact{}, false
	}
	doc := strings.TrimSpace(m[1])
	var css string
	if s := styleBlock.FindStringSubmatch(doc); s != nil {
		css = strings.TrimSpace(s[1])
	}
	html := doc
	if b := bodyBlock.FindStringSubmatch(doc); b != nil {
		html = strings.TrimSpace(b[1])
	}
	return game.Artifact{HTML: html, CSS: css}, true
}

// ParseTurbo extracts component source from a fenced block, falling back to
// the raw reply when it already looks like a module.
func ParseTurbo(reply string) (game.Artifact, bool) {
	m := codeFence.FindStringSubmatch(reply)
	if m == nil {
		if strings.Contains(reply, "export default") &&
			(strings.Contains(reply, "import") || strings.Contains(reply, "function Component")) {
			return game.Artifact{Source: strings.TrimSpace(reply)}, true
		}
		return game.Artifact{}, false
	}
	src := strings.TrimSpace(m[1])
	if !strings.Contains(src, "export default") {
		return game.Artifact{}, false
	}
	return game.Artifact{Source: src}, true
}

func parseReply(mode game.RenderMode, reply string) (game.Artifact, bool) {
	if mode == game.RenderTurbo {
		return ParseTurbo(reply)
	}
	return ParseRetro(reply)
}
