package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ocwsync/internal/config"
	"ocwsync/internal/services"
	"ocwsync/internal/store"
)

func newCoursesCommand(ctx *commandContext) *cobra.Command {
	var downloadedOnly bool
	var limit int

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List catalog courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, s *store.Store) error {
				courses, err := s.ListCourses(cmd.Context(), downloadedOnly, limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(courses) == 0 {
					fmt.Fprintln(out, "No courses found; run `ocwsync catalog sync` first")
					return nil
				}
				rows := make([][]string, 0, len(courses))
				for _, c := range courses {
					downloaded := "-"
					if c.ContentDownloadedAt != nil {
						downloaded = c.ContentDownloadedAt.Local().Format("2006-01-02 15:04")
					}
					rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.ReadableID, c.Title, downloaded})
				}
				fmt.Fprintln(out, tableSpec{
					headers: []string{"ID", "Number", "Title", "Downloaded"},
					aligns:  []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
					widths:  []int{0, 0, 60, 0},
					rows:    rows,
				}.render())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&downloadedOnly, "downloaded", false, "Only list courses with downloaded content")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of courses to list (0 for all)")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <course-slug>",
		Short: "Show a course's sections, resources and problem counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := strings.TrimSpace(args[0])
			return ctx.withStore(func(_ *config.Config, s *store.Store) error {
				matches, err := s.FindCoursesBySlug(cmd.Context(), slug)
				if err != nil {
					return err
				}
				if len(matches) == 0 {
					return services.Wrap(services.ErrNotFound, "show", "find course", slug, nil)
				}
				course := matches[0]
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s)\n%s\n", course.Title, course.ReadableID, course.URL)
				if !course.ContentDownloaded {
					fmt.Fprintf(out, "Content not downloaded; run `ocwsync download %s`\n", slug)
					return nil
				}

				sections, err := s.ListSections(cmd.Context(), course.ID)
				if err != nil {
					return err
				}
				resources, err := s.ListResources(cmd.Context(), course.ID)
				if err != nil {
					return err
				}
				counts, err := s.CountProblems(cmd.Context(), course.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderCourseContent(sections, resources, counts))
				return nil
			})
		},
	}
}

func renderCourseContent(sections []store.Section, resources []store.Resource, counts map[int64]int) string {
	bySection := make(map[int64][]store.Resource, len(sections))
	for _, r := range resources {
		if r.SectionID != nil {
			bySection[*r.SectionID] = append(bySection[*r.SectionID], r)
		}
	}
	var rows [][]string
	for _, sec := range sections {
		rows = append(rows, []string{strconv.Itoa(sec.Ordering), sec.SectionType, sec.Title, "", ""})
		for _, r := range bySection[sec.ID] {
			problems := ""
			if n, ok := counts[r.ID]; ok {
				problems = strconv.Itoa(n)
			}
			rows = append(rows, []string{"", "  " + r.ResourceType, r.Title, resourceLocation(r), problems})
		}
	}
	return tableSpec{
		headers: []string{"#", "Type", "Title", "Location", "Problems"},
		aligns:  []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
		widths:  []int{0, 0, 50, 60, 0},
		rows:    rows,
	}.render()
}

func resourceLocation(r store.Resource) string {
	switch {
	case r.PDFPath != nil:
		return *r.PDFPath
	case r.VideoURL != nil:
		return *r.VideoURL
	case r.ArchiveURL != nil:
		return *r.ArchiveURL
	default:
		return ""
	}
}
