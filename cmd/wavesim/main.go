// wavesim is a CLI utility for preparing acoustic wave simulation media.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/wavesim/internal/config"
	"github.com/Faultbox/wavesim/internal/logger"
	"github.com/Faultbox/wavesim/pkg/formats"
	"github.com/Faultbox/wavesim/pkg/math"
	"github.com/Faultbox/wavesim/pkg/medium"
	"github.com/Faultbox/wavesim/pkg/mesh"
	"github.com/Faultbox/wavesim/pkg/octree"
	"github.com/Faultbox/wavesim/pkg/scene"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "decompose", "d":
		err = cmdDecompose(args)
	case "octree":
		err = cmdOctree(args)
	case "inspect", "info":
		err = cmdInspect(args)
	case "export":
		err = cmdExport(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`wavesim - acoustic medium preparation utility

Usage:
  wavesim <command> [options]

Commands:
  decompose   Decompose the scene into partitions and size their cells
  octree      Show octree statistics and test points against the mesh
  inspect     Show mesh statistics and the manifold check
  export      Write the scene mesh as STL or OBJ
  config      Print the effective configuration as YAML

Common options:
  -config <file>          Config file (default ./wavesim.yaml)
  -mesh <file>            Use an STL or OBJ mesh instead of the configured scene
  -material solid|air     Material for loaded meshes (default solid)
  -grid <size>            Uniform grid size
  -method <name>          systematic or greedy_random
  -max-frequency <hz>     Highest simulated frequency
  -debug                  Enable debug logging

Examples:
  wavesim decompose -grid 0.5 -max-frequency 2000 -o partitions.obj
  wavesim octree -point 0.5,0.5,0.5 -point 2,2,2 -o octree.obj
  wavesim inspect -mesh room.obj
  wavesim export -o cube.stl`)
}

// session is the state shared by every subcommand.
type session struct {
	cfg      *config.Config
	log      *zap.Logger
	meshPath string
	material string
}

func newSession(name string, args []string, extra func(fs *flag.FlagSet)) (*session, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	s := &session{}
	fs.StringVar(&s.meshPath, "mesh", "", "STL or OBJ mesh to use instead of the configured scene")
	fs.StringVar(&s.material, "material", "solid", "Material for loaded meshes: solid or air")
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	opts := cfg.LoggerOptions()
	opts.Console = os.Stderr
	if err := logger.InitWithOptions(opts); err != nil {
		return nil, err
	}
	s.cfg = cfg
	s.log = logger.Log.With(zap.String("run", uuid.NewString()), zap.String("command", name))
	return s, nil
}

func (s *session) close() {
	if path := s.cfg.Metrics.Textfile; path != "" {
		if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
			s.log.Warn("Failed to write metrics", zap.String("path", path), zap.Error(err))
		} else {
			s.log.Debug("Wrote metrics", zap.String("path", path))
		}
	}
	_ = s.log.Sync()
}

// mesh loads the mesh file if one was given, otherwise builds the scene.
func (s *session) mesh() (*mesh.Mesh, error) {
	if s.meshPath == "" {
		m, err := s.cfg.Scene.Build()
		if err != nil {
			return nil, err
		}
		s.log.Info("Built scene mesh",
			zap.String("scene", s.cfg.Scene.Name),
			zap.Int("shapes", len(s.cfg.Scene.Shapes)),
			zap.Int("faces", m.FaceCount()),
		)
		return m, nil
	}

	attr, err := scene.Material{Preset: s.material}.Attribute()
	if err != nil {
		return nil, err
	}
	m, err := formats.LoadMesh(s.meshPath, attr)
	if err != nil {
		return nil, err
	}
	s.log.Info("Loaded mesh",
		zap.String("path", s.meshPath),
		zap.Int("faces", m.FaceCount()),
		zap.Int("vertices", m.VertexCount()),
	)
	return m, nil
}

func cmdDecompose(args []string) error {
	var (
		noResolution bool
		out          string
	)
	s, err := newSession("decompose", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&noResolution, "no-resolution", false, "Skip cell sizing")
		fs.StringVar(&out, "o", "", "Write the partition boxes to this OBJ file")
	})
	if err != nil {
		return err
	}
	defer s.close()

	m, err := s.mesh()
	if err != nil {
		return err
	}
	tree, err := octree.Build(m, s.cfg.OctreeOptions(s.log))
	if err != nil {
		return err
	}
	mcfg, def, err := s.cfg.MediumOptions(s.log, tree)
	if err != nil {
		return err
	}

	med := medium.New(mcfg)
	if err := med.BuildFromMesh(m, s.cfg.Medium.GridSize, def); err != nil {
		return err
	}
	if !noResolution {
		if err := med.SetResolution(s.cfg.Resolution.MaxFrequency, s.cfg.Resolution.CellTolerance); err != nil {
			return err
		}
	}

	printPartitions(med)
	if out != "" {
		if err := formats.ExportMediumFile(out, med); err != nil {
			return err
		}
		s.log.Info("Exported partitions", zap.String("path", out), zap.Int("partitions", len(med.Partitions)))
	}
	return nil
}

func printPartitions(med *medium.Medium) {
	fmt.Printf("Boundary:   %s - %s\n", fmtVec(med.Boundary.Min), fmtVec(med.Boundary.Max))
	fmt.Printf("Grid:       %s\n", fmtVec(med.GridSize))
	fmt.Printf("Partitions: %d\n", len(med.Partitions))
	fmt.Printf("Cells:      %d\n", med.CellCount())
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tMIN\tMAX\tSPEED\tABSORB\tCELL\tCELLS\tDT\tADJACENT")
	for i, p := range med.Partitions {
		adj := make([]string, len(p.Adjacent))
		for j, a := range p.Adjacent {
			adj[j] = strconv.Itoa(a)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.0f\t%.2f\t%.4g\t%d\t%.3g\t%s\n",
			i, fmtVec(p.AABB.Min), fmtVec(p.AABB.Max),
			p.Attr.SoundVelocity, p.Attr.Absorption,
			p.CellSize, p.Cells(), p.TimeStep,
			strings.Join(adj, ","))
	}
	w.Flush()
}

// pointList collects repeated -point x,y,z flags.
type pointList []math.Vec3

func (p *pointList) String() string { return fmt.Sprint(*p) }

func (p *pointList) Set(s string) error {
	v, err := parseVec(s)
	if err != nil {
		return err
	}
	*p = append(*p, v)
	return nil
}

func parseVec(s string) (math.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return math.Vec3{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var out [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("bad coordinate %q: %w", part, err)
		}
		out[i] = v
	}
	return math.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}

func fmtVec(v math.Vec3) string {
	return fmt.Sprintf("(%.3g, %.3g, %.3g)", v.X, v.Y, v.Z)
}

func cmdOctree(args []string) error {
	var (
		points pointList
		out    string
	)
	s, err := newSession("octree", args, func(fs *flag.FlagSet) {
		fs.Var(&points, "point", "Point x,y,z to test against the mesh (repeatable)")
		fs.StringVar(&out, "o", "", "Write the node boxes to this OBJ file")
	})
	if err != nil {
		return err
	}
	defer s.close()

	m, err := s.mesh()
	if err != nil {
		return err
	}
	tree, err := octree.Build(m, s.cfg.OctreeOptions(s.log))
	if err != nil {
		return err
	}

	leaves := tree.Leaves()
	maxFaces := 0
	for _, id := range leaves {
		if n := len(tree.Node(id).Faces); n > maxFaces {
			maxFaces = n
		}
	}
	fmt.Printf("Nodes:      %d\n", tree.NodeCount())
	fmt.Printf("Leaves:     %d\n", len(leaves))
	fmt.Printf("Depth:      %d (%d subdivisions)\n", tree.Depth(), tree.Subdivisions())
	fmt.Printf("Smallest:   %s\n", fmtVec(tree.SmallestSubdivision()))
	fmt.Printf("Faces:      %d (max %d per leaf)\n", tree.FaceCount(), maxFaces)

	if len(points) > 0 {
		fmt.Println()
		for _, p := range points {
			where := "outside"
			if tree.ContainsPoint(p) {
				where = "inside"
			}
			fmt.Printf("  %s  %-7s  %d crossings\n", fmtVec(p), where, tree.Crossings(p))
		}
	}
	if out != "" {
		if err := formats.ExportOctreeFile(out, tree); err != nil {
			return err
		}
		s.log.Info("Exported octree", zap.String("path", out), zap.Int("nodes", tree.NodeCount()))
	}
	return nil
}

func cmdInspect(args []string) error {
	s, err := newSession("inspect", args, nil)
	if err != nil {
		return err
	}
	defer s.close()

	m, err := s.mesh()
	if err != nil {
		return err
	}
	box := m.AABB()
	fmt.Printf("Mesh:       %s\n", m.Name)
	fmt.Printf("Vertices:   %d (%s)\n", m.VertexCount(), m.VertexKind())
	fmt.Printf("Faces:      %d (%s indices)\n", m.FaceCount(), m.IndexKind())
	fmt.Printf("Edges:      %d\n", m.EdgeCount())
	fmt.Printf("Bounds:     %s - %s\n", fmtVec(box.Min), fmtVec(box.Max))
	fmt.Printf("Manifold:   %v\n", m.IsManifold())
	return nil
}

func cmdExport(args []string) error {
	var out string
	s, err := newSession("export", args, func(fs *flag.FlagSet) {
		fs.StringVar(&out, "o", "scene.stl", "Output mesh file, .stl or .obj")
	})
	if err != nil {
		return err
	}
	defer s.close()

	m, err := s.mesh()
	if err != nil {
		return err
	}
	if err := formats.SaveMesh(out, m); err != nil {
		return err
	}
	s.log.Info("Exported mesh", zap.String("path", out), zap.Int("faces", m.FaceCount()))
	return nil
}

func cmdConfig(args []string) error {
	var save string
	s, err := newSession("config", args, func(fs *flag.FlagSet) {
		fs.StringVar(&save, "save", "", "Also write the configuration to this file")
	})
	if err != nil {
		return err
	}
	defer s.close()

	if save != "" {
		if err := s.cfg.SaveTo(save); err != nil {
			return err
		}
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(s.cfg); err != nil {
		return err
	}
	return enc.Close()
}
