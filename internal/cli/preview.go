package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ruleviz/pkg/pipeline"
	"github.com/matzehuels/ruleviz/pkg/stimulus"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	tabStyle     = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
	tabActive    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
)

// =============================================================================
// TrialListModel - Interactive trial browser
// =============================================================================

// TrialSelection is the trial picked in the browser.
type TrialSelection struct {
	Domain string
	Index  int
}

// TrialListModel is the bubbletea model for browsing a feed.
type TrialListModel struct {
	Feed     stimulus.Feed
	Domains  []string
	Tab      int
	Cursor   int
	Offset   int
	Height   int
	Selected *TrialSelection
}

// NewTrialListModel creates a browser over every domain of feed.
func NewTrialListModel(feed stimulus.Feed) TrialListModel {
	return TrialListModel{Feed: feed, Domains: feed.Domains(), Height: 15}
}

func (m TrialListModel) trials() []stimulus.Trial {
	if len(m.Domains) == 0 {
		return nil
	}
	return m.Feed[m.Domains[m.Tab]]
}

func (m TrialListModel) Init() tea.Cmd {
	return nil
}

func (m TrialListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.trials())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "left", "h", "shift+tab":
			if len(m.Domains) > 0 {
				m.Tab = (m.Tab + len(m.Domains) - 1) % len(m.Domains)
				m.Cursor, m.Offset = 0, 0
			}
		case "right", "l", "tab":
			if len(m.Domains) > 0 {
				m.Tab = (m.Tab + 1) % len(m.Domains)
				m.Cursor, m.Offset = 0, 0
			}
		case "enter":
			if len(m.trials()) == 0 {
				return m, nil
			}
			m.Selected = &TrialSelection{Domain: m.Domains[m.Tab], Index: m.Cursor}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m TrialListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Trials"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ←/→ domain  ⏎ select  q quit"))
	b.WriteString("\n\n")

	tabs := make([]string, len(m.Domains))
	for i, d := range m.Domains {
		if i == m.Tab {
			tabs[i] = tabActive.Render(d)
		} else {
			tabs[i] = tabStyle.Render(d)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	trials := m.trials()
	end := min(m.Offset+m.Height, len(trials))
	var rows [][]string
	for i := m.Offset; i < end; i++ {
		t := trials[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		alts := t.Alternatives()
		rows = append(rows, []string{cursor, strconv.Itoa(i), t.Rule, t.Challenge, alts[0], alts[1], strconv.Itoa(t.Target)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Rule", "Challenge", "0", "1", "Target").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if m.Offset+row == m.Cursor {
				return base.Foreground(colorGreen).Bold(true)
			}
			if col == 1 || col == 6 {
				return base.Foreground(colorDim)
			}
			return base.Foreground(colorWhite)
		})

	b.WriteString(tbl.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(trials)), len(trials))))

	return b.String()
}

// =============================================================================
// Command
// =============================================================================

// previewCommand creates the preview command for browsing a feed.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		source string
		render bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Browse a stimulus feed interactively",
		Long: `Browse the trials of a stimulus feed in the terminal.

Selecting a trial prints its alignment analysis. With --render the animated
explanation of the selected trial is written as well.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			feed, err := c.loadFeed(ctx, source, false)
			if err != nil {
				return err
			}

			final, err := tea.NewProgram(NewTrialListModel(feed), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			sel := final.(TrialListModel).Selected
			if sel == nil {
				return nil
			}

			o := &renderOpts{animated: render, sel: stimulusFlags{source: source, domain: sel.Domain, index: sel.Index}}
			trial, kind, err := c.selectTrial(ctx, o.sel)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.baseOptions()
			opts.Kind = kind
			an, err := runner.Analyze(ctx, trial, opts)
			if err != nil {
				return err
			}
			printAnalysis(cmd.OutOrStdout(), trial.Rule, an)
			if !render {
				printNextStep("Animate", fmt.Sprintf("ruleviz animate -d %s -i %d", sel.Domain, sel.Index))
				return nil
			}

			opts = c.renderOptions(o)
			opts.Kind = kind
			res, err := runner.Execute(ctx, trial, opts)
			if err != nil {
				return err
			}
			return writeArtifacts(res, []string{pipeline.FormatSVG}, outputBase(o, sel.Domain, sel.Index))
		},
	}

	cmd.Flags().StringVarP(&source, "stimuli", "s", "", "stimulus directory, feed.json file or http(s) base URL")
	cmd.Flags().BoolVar(&render, "render", false, "write the animated explanation of the selected trial")

	return cmd
}
