// ABOUTME: install-skill command shipping the canvas skill definition for Claude Code
// ABOUTME: Writes the embedded SKILL.md under a skills root, or prints it with --print
package commands

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

//go:embed skill/SKILL.md
var skillFS embed.FS

const skillName = "canvas"

// NewInstallSkillCmd creates the install-skill command
func NewInstallSkillCmd() *cobra.Command {
	var (
		skipConfirm bool
		printOnly   bool
		skillsRoot  string
	)

	cmd := &cobra.Command{
		Use:   "install-skill",
		Short: "Install Claude Code skill",
		Long: `Install the canvas skill for Claude Code.

The skill definition is written to <dir>/canvas/SKILL.md, where <dir>
defaults to ~/.claude/skills. Use --print to inspect it without installing.`,
		Example: `  canvas install-skill
  canvas install-skill -y --dir ./.claude/skills
  canvas install-skill --print`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := skillFS.ReadFile("skill/SKILL.md")
			if err != nil {
				return fmt.Errorf("failed to read embedded skill: %w", err)
			}
			if printOnly {
				_, err := cmd.OutOrStdout().Write(content)
				return err
			}

			skillPath, err := skillDestination(skillsRoot)
			if err != nil {
				return err
			}
			return installSkill(cmd, content, skillPath, skipConfirm)
		},
	}

	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the skill definition instead of installing it")
	cmd.Flags().StringVar(&skillsRoot, "dir", "", "Skills directory (default ~/.claude/skills)")
	return cmd
}

// skillDestination resolves the SKILL.md path under root, or under the
// user's ~/.claude/skills when root is empty.
func skillDestination(root string) (string, error) {
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		root = filepath.Join(home, ".claude", "skills")
	}
	return filepath.Join(root, skillName, "SKILL.md"), nil
}

func installSkill(cmd *cobra.Command, content []byte, skillPath string, skipConfirm bool) error {
	out := cmd.OutOrStdout()

	existing, err := os.ReadFile(skillPath)
	switch {
	case err == nil && bytes.Equal(existing, content):
		_, _ = fmt.Fprintf(out, "Canvas skill is already up to date at %s\n", skillPath)
		return nil
	case err != nil && !os.IsNotExist(err):
		return fmt.Errorf("failed to read existing skill: %w", err)
	}

	_, _ = fmt.Fprintln(out, "Canvas Skill for Claude Code")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "With this skill Claude Code can:")
	_, _ = fmt.Fprintln(out, "  • Place notes and code blocks on a semantic canvas")
	_, _ = fmt.Fprintln(out, "  • Search blocks by meaning and find similar blocks")
	_, _ = fmt.Fprintln(out, "  • Get connection and relocation suggestions")
	_, _ = fmt.Fprintln(out, "  • Use the /canvas slash command")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "Destination:\n  %s\n\n", skillPath)
	if existing != nil {
		_, _ = fmt.Fprintln(out, "Note: A different skill file already exists and will be overwritten.")
		_, _ = fmt.Fprintln(out)
	}

	if !skipConfirm {
		_, _ = fmt.Fprint(out, "Install the canvas skill? [y/N] ")
		response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && response == "" {
			return fmt.Errorf("failed to read response: %w", err)
		}
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			_, _ = fmt.Fprintln(out, "Installation cancelled.")
			return nil
		}
		_, _ = fmt.Fprintln(out)
	}

	if err := os.MkdirAll(filepath.Dir(skillPath), 0755); err != nil {
		return fmt.Errorf("failed to create skill directory: %w", err)
	}
	if err := os.WriteFile(skillPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write skill file: %w", err)
	}

	_, _ = fmt.Fprintln(out, "✓ Installed canvas skill successfully!")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Claude Code will now recognize /canvas commands.")
	_, _ = fmt.Fprintln(out, "Try asking Claude: \"Put these notes on the canvas\" or \"Which of my notes are related?\"")
	return nil
}
