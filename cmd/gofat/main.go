// Command gofat is a thin example CLI over the vfat engine: mount a FAT32
// image file and list, read, write, and remove entries in it.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/iris-fs/vfat"
	"github.com/iris-fs/vfat/device"
)

var imagePath string

func mount() (*vfat.Fs, *os.File, error) {
	f, err := os.OpenFile(imagePath, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}

	dev := device.NewSeekerDevice(f, 512)
	fsHandle, err := vfat.Open(dev, 0)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return fsHandle, f, nil
}

func main() {
	root := &cobra.Command{
		Use:   "gofat",
		Short: "Inspect and modify a FAT32/VFAT image file",
	}
	root.PersistentFlags().StringVarP(&imagePath, "image", "i", "", "path to the FAT32 image file")
	root.MarkPersistentFlagRequired("image")

	root.AddCommand(lsCmd(), catCmd(), mkdirCmd(), writeCmd(), rmCmd(), statCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "List a directory's contents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := "/"
			if len(args) == 1 {
				p = args[0]
			}

			fsHandle, f, err := mount()
			if err != nil {
				return err
			}
			defer f.Close()

			dir, err := fsHandle.OpenDir(p)
			if err != nil {
				return err
			}
			entries, err := dir.Contents()
			if err != nil {
				return err
			}

			for _, e := range entries {
				if e.Name == "." || e.Name == ".." {
					continue
				}
				kind := "-"
				if e.IsDirectory() {
					kind = "d"
				}
				fmt.Printf("%s %8s %s\n", kind, humanize.Bytes(uint64(e.Size)), e.Name)
			}
			return nil
		},
	}
}

func catCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a file's contents to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsHandle, f, err := mount()
			if err != nil {
				return err
			}
			defer f.Close()

			file, err := fsHandle.OpenFile(args[0])
			if err != nil {
				return err
			}
			buf := make([]byte, file.Size())
			n, err := file.Read(buf)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(buf[:n])
			return err
		},
	}
}

func mkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsHandle, f, err := mount()
			if err != nil {
				return err
			}
			defer f.Close()

			parentPath, base := splitPath(args[0])
			parent, err := fsHandle.OpenDir(parentPath)
			if err != nil {
				return err
			}
			_, err = parent.CreateDirectory(base)
			return err
		},
	}
}

func writeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write <path>",
		Short: "Create a file and write stdin to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsHandle, f, err := mount()
			if err != nil {
				return err
			}
			defer f.Close()

			parentPath, base := splitPath(args[0])
			parent, err := fsHandle.OpenDir(parentPath)
			if err != nil {
				return err
			}
			file, err := parent.CreateFile(base)
			if err != nil {
				return err
			}

			buf, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			_, err = file.Write(buf)
			return err
		},
	}
}

func rmCmd() *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "rm <path>",
		Short: "Remove an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsHandle, f, err := mount()
			if err != nil {
				return err
			}
			defer f.Close()

			aferoFs := vfat.NewAferoFs(fsHandle)
			if recursive {
				return aferoFs.RemoveAll(args[0])
			}
			return aferoFs.Remove(args[0])
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "remove directories and their contents")
	return cmd
}

func statCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "Show metadata for an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsHandle, f, err := mount()
			if err != nil {
				return err
			}
			defer f.Close()

			meta, err := fsHandle.GetPath(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("name:     %s\n", meta.Name)
			fmt.Printf("size:     %s\n", humanize.Bytes(uint64(meta.Size)))
			fmt.Printf("dir:      %v\n", meta.IsDirectory())
			fmt.Printf("modified: %s\n", humanize.Time(meta.Modified))
			return nil
		},
	}
}

func splitPath(p string) (dir, base string) {
	parts := vfat.SplitPath(p)
	if len(parts) == 0 {
		return "/", ""
	}
	base = parts[len(parts)-1]
	dir = "/"
	for _, part := range parts[:len(parts)-1] {
		dir = vfat.JoinPath(dir, part)
	}
	return dir, base
}
