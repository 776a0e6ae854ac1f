package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Schizogonia/mixamo-ue-fix/internal/engine"
	"github.com/Schizogonia/mixamo-ue-fix/internal/preview"
	"github.com/Schizogonia/mixamo-ue-fix/internal/report"
	"github.com/Schizogonia/mixamo-ue-fix/internal/scene"
)

func main() {
	fps := flag.Float64("fps", 0, "Sample rate for the frame grid (default: 30)")
	previewFlag := flag.Bool("preview", false, "Render a stick-figure preview")
	previewFrame := flag.Int("frame", -1, "Frame to preview (default: clip start)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: inspect [flags] file.glb [file2.glb ...]")
		os.Exit(2)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	exit := 0
	for _, arg := range flag.Args() {
		log := report.New(out)
		f, err := engine.Import(arg, engine.Options{SampleRate: *fps}, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Import error %s: %v\n", arg, err)
			exit = 1
			continue
		}
		g := f.Graph

		fmt.Fprintf(out, "\n=== %s ===\n", arg)
		fmt.Fprintf(out, "Objects: %d\n", len(g.Objects))
		for i, o := range g.Objects {
			mark := ""
			switch o.Payload {
			case scene.PayloadArmature:
				mark = " [ARMATURE]"
			case scene.PayloadMesh:
				mark = " [MESH]"
			}
			parent := "-"
			if o.Parent >= 0 {
				parent = g.Objects[o.Parent].Name
			}
			fmt.Fprintf(out, "  Object[%d] %s (parent=%s)%s\n", i, o.Name, parent, mark)
		}

		if g.Skeleton != nil {
			fmt.Fprintf(out, "Bones: %d\n", len(g.Skeleton.Bones))
			printBoneTree(out, g.Skeleton, -1, 1)
		}

		if g.Clip != nil {
			fmt.Fprintf(out, "Clip %q: frames %d-%d at %g fps, object track: %v\n",
				g.Clip.Name, g.Clip.Start, g.Clip.End, g.Clip.FPS, g.Clip.Object != nil)
		} else {
			fmt.Fprintln(out, "Clip: none")
		}

		if *previewFlag {
			frame := *previewFrame
			if frame < 0 {
				frame, _ = g.FrameRange()
			}
			path := strings.TrimSuffix(arg, filepath.Ext(arg)) + fmt.Sprintf("_f%d.webp", frame)
			if err := preview.Save(g, frame, 256, path); err != nil {
				fmt.Fprintf(os.Stderr, "Preview error %s: %v\n", arg, err)
				exit = 1
			} else {
				fmt.Fprintf(out, "Preview: %s\n", path)
			}
		}
	}
	out.Flush()
	os.Exit(exit)
}

func printBoneTree(out *bufio.Writer, sk *scene.Skeleton, parent, depth int) {
	for i, b := range sk.Bones {
		if b.Parent != parent {
			continue
		}
		fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", depth), b.Name)
		printBoneTree(out, sk, i, depth+1)
	}
}
