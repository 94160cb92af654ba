package generator

import (
	"fmt"

	"vibe-in-the-dark/internal/game"
)

const retroSystemPrompt = `You are the hands of a player in a UI design game. The player never sees code, only the rendered page.

Every message contains the player's CURRENT HTML and CSS followed by the change they want.
Edit that code incrementally:
- keep every element and rule the player did not ask to change
- never start over or drop existing content unless asked to
- plain HTML and CSS only, no JavaScript
- put the CSS in a <style> tag inside the document

Reply with nothing but the document in this shape:
<html>
<style>
/* css */
</style>
<body>
<!-- markup -->
</body>
</html>`

const turboSystemPrompt = `You are the hands of a player in a React component design game. The player never sees code, only the rendered component.

Every message contains the player's CURRENT component source followed by the change they want.
Edit that source incrementally:
- keep existing state, handlers and elements the player did not ask to change
- never start over with a fresh component
- the component is the default export and is named Component
- it renders inside a container, so size the root with h-full rather than h-screen
- style with Tailwind utility classes and the shadcn/ui primitives (Button, Card, Badge, Input, Textarea, Select, Dialog, Tabs, Accordion, Slider, Switch, Progress, Popover, Tooltip, Calendar, Checkbox); no other libraries
- every SelectItem needs a unique, non-empty value
- React hooks are available for interactivity

Reply with nothing but one fenced jsx code block containing the whole component.`

func systemPrompt(mode game.RenderMode) string {
	if mode == game.RenderTurbo {
		return turboSystemPrompt
	}
	return retroSystemPrompt
}

func userMessage(req Request) string {
	var current string
	if req.Mode == game.RenderTurbo {
		current = fmt.Sprintf("Component source:\n%s", req.Current.Source)
	} else {
		current = fmt.Sprintf("HTML:\n%s\n\nCSS:\n%s", req.Current.HTML, req.Current.CSS)
	}
	return fmt.Sprintf(`--- CURRENT CODE ---
%s
--- END CURRENT CODE ---

--- REQUESTED CHANGE ---
%s

Change only what was asked for and keep the rest of the current code exactly as it is.`, current, req.Prompt)
}
