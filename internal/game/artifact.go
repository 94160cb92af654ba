package game

const defaultRetroHTML = `<div style="display: flex; align-items: center; justify-content: center; height: 100vh;"><h1>Start prompting!</h1></div>`

const defaultTurboSource = `export default function Component() {
  return (
    <div className="flex items-center justify-center h-full">
      <h1 className="text-4xl font-bold">Start prompting!</h1>
    </div>
  );
}`

// DefaultArtifact is what a participant sees before their first prompt.
func DefaultArtifact(mode RenderMode) Artifact {
	if mode == RenderTurbo {
		return Artifact{Source: defaultTurboSource}
	}
	return Artifact{HTML: defaultRetroHTML}
}

// Empty reports whether the artifact carries no renderable content.
func (a Artifact) Empty() bool {
	return a.HTML == "" && a.CSS == "" && a.Source == ""
}
