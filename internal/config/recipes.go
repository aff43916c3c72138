package config

import "slices"

// UniqueRecipes returns every recipe named by the commands, in order
// of first appearance
func UniqueRecipes(o RunOptions) []string {
	var recipes []string
	for _, c := range o.Commands {
		for _, r := range c.Recipes {
			if !slices.Contains(recipes, r) {
				recipes = append(recipes, r)
			}
		}
	}
	return recipes
}

// CommandsByRecipes returns the command lines belonging to at least
// one of recipes, each once, in configuration order
func CommandsByRecipes(o RunOptions, recipes []string) []string {
	var cmds []string
	for _, c := range o.Commands {
		for _, r := range c.Recipes {
			if slices.Contains(recipes, r) {
				cmds = append(cmds, c.Command)
				break
			}
		}
	}
	return cmds
}
