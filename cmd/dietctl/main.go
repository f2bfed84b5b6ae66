// Command dietctl runs the calorie calculator and inspects the tip catalog
// from the shell.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/CODE-DK/nutritionist/internal/metabolism"
	"github.com/CODE-DK/nutritionist/internal/tips"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	var debug bool
	root := &cobra.Command{
		Use:           "dietctl",
		Short:         "Calorie calculator and daily tip catalog tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	root.AddCommand(newCaloriesCmd())
	root.AddCommand(newWeeksToGoalCmd())
	root.AddCommand(newTipsCmd())
	return root
}

func newCaloriesCmd() *cobra.Command {
	var (
		weight, target         float64
		height, age            int
		gender, activity, goal string
		asJSON                 bool
	)

	cmd := &cobra.Command{
		Use:   "calories",
		Short: "Compute BMR, TDEE and the goal-adjusted daily target",
		RunE: func(cmd *cobra.Command, args []string) error {
			sex, err := metabolism.ParseSex(gender)
			if err != nil {
				return err
			}
			level, err := metabolism.ParseActivityLevel(activity)
			if err != nil {
				return err
			}
			g, err := metabolism.ParseGoalType(goal)
			if err != nil {
				return err
			}

			p := metabolism.Profile{WeightKG: weight, HeightCM: height, Age: age, Sex: sex, ActivityLevel: level, GoalType: g}
			log.Debug().Interface("profile", p).Msg("calculating")
			res := metabolism.Calculate(p)
			weekly := metabolism.WeeklyWeightChange(float64(res.TargetCalories - res.TDEE))
			weeks := 0
			if cmd.Flags().Changed("target") {
				weeks = metabolism.WeeksToGoal(weight, target, weekly)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(map[string]any{
					"bmr":              res.BMR,
					"tdee":             res.TDEE,
					"target_calories":  res.TargetCalories,
					"weekly_change_kg": weekly,
					"weeks_to_goal":    weeks,
				})
			}
			fmt.Fprintf(out, "BMR:             %d kcal\n", res.BMR)
			fmt.Fprintf(out, "TDEE:            %d kcal\n", res.TDEE)
			fmt.Fprintf(out, "Target calories: %d kcal\n", res.TargetCalories)
			fmt.Fprintf(out, "Weekly change:   %+.1f kg\n", weekly)
			if cmd.Flags().Changed("target") {
				fmt.Fprintf(out, "Weeks to goal:   %d\n", weeks)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&weight, "weight", 0, "body weight in kg")
	cmd.Flags().IntVar(&height, "height", 0, "height in cm")
	cmd.Flags().IntVar(&age, "age", 0, "age in years")
	cmd.Flags().StringVar(&gender, "gender", "", "male | female")
	cmd.Flags().StringVar(&activity, "activity", string(metabolism.Moderate), "sedentary | light | moderate | active | very_active")
	cmd.Flags().StringVar(&goal, "goal", string(metabolism.Maintain), "lose_weight | maintain | gain_weight")
	cmd.Flags().Float64Var(&target, "target", 0, "target weight in kg")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("weight")
	_ = cmd.MarkFlagRequired("height")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("gender")
	return cmd
}

func newWeeksToGoalCmd() *cobra.Command {
	var current, target, weekly float64

	cmd := &cobra.Command{
		Use:   "weeks-to-goal",
		Short: "Estimate weeks to reach a target weight at a weekly pace",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), metabolism.WeeksToGoal(current, target, weekly))
			return nil
		},
	}
	cmd.Flags().Float64Var(&current, "current", 0, "current weight in kg")
	cmd.Flags().Float64Var(&target, "target", 0, "target weight in kg")
	cmd.Flags().Float64Var(&weekly, "weekly", 0, "weekly change in kg (sign ignored)")
	_ = cmd.MarkFlagRequired("current")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("weekly")
	return cmd
}

func newTipsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tips",
		Short: "Inspect the daily tip catalog",
	}
	cmd.AddCommand(newTipsValidateCmd())
	cmd.AddCommand(newTipsListCmd())
	return cmd
}

func newTipsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Report catalog size per category and fail on duplicate ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := tips.Default()
			out := cmd.OutOrStdout()

			stats := catalog.Stats()
			categories := make([]string, 0, len(stats.ByCategory))
			for c := range stats.ByCategory {
				categories = append(categories, string(c))
			}
			sort.Strings(categories)

			fmt.Fprintf(out, "total: %d\n", stats.Total)
			for _, c := range categories {
				fmt.Fprintf(out, "  %-14s %d\n", c, stats.ByCategory[tips.Category(c)])
			}

			v := catalog.Validate()
			if !v.Valid {
				return fmt.Errorf("duplicate tip ids: %v", v.Duplicates)
			}
			fmt.Fprintln(out, "catalog is valid")
			return nil
		},
	}
}

func newTipsListCmd() *cobra.Command {
	var diet, goal string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tips applicable to a diet and goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := tips.ParseDietType(diet)
			if err != nil {
				return err
			}
			var g metabolism.GoalType
			if goal != "" {
				if g, err = metabolism.ParseGoalType(goal); err != nil {
					return err
				}
			}

			applicable := tips.Default().Applicable(d, g)
			out := cmd.OutOrStdout()
			for _, t := range applicable {
				fmt.Fprintf(out, "%-28s %-13s %s %s\n", t.ID, t.Category, t.Emoji, t.Title)
			}
			fmt.Fprintf(out, "%d tip(s)\n", len(applicable))
			return nil
		},
	}
	cmd.Flags().StringVar(&diet, "diet", "", "diet type, e.g. keto")
	cmd.Flags().StringVar(&goal, "goal", "", "lose_weight | maintain | gain_weight (empty matches all)")
	_ = cmd.MarkFlagRequired("diet")
	return cmd
}
