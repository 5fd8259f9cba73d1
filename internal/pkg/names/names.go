// Package names assigns the anonymous display names users get at signup.
package names

import "github.com/samber/lo"

var animals = []string{
	"Alligator", "Anteater", "Armadillo", "Badger", "Bat", "Beaver",
	"Buffalo", "Camel", "Chameleon", "Cheetah", "Chipmunk", "Chinchilla",
	"Chupacabra", "Cormorant", "Coyote", "Crow", "Dingo", "Dinosaur",
	"Dolphin", "Duck", "Elephant", "Ferret", "Fox", "Frog", "Giraffe",
	"Gopher", "Grizzly", "Hedgehog", "Hippo", "Hyena", "Ibex", "Iguana",
	"Jackal", "Koala", "Kraken", "Leopard", "Liger", "Llama", "Manatee",
	"Mink", "Monkey", "Narwhal", "Nyan Cat", "Orangutan", "Otter", "Panda",
	"Penguin", "Platypus", "Python", "Rabbit", "Raccoon", "Rhino", "Sheep",
	"Skunk", "Squirrel", "Tortoise", "Walrus", "Wolf", "Wolverine", "Wombat",
}

// Random returns a random anonymous display name.
func Random() string {
	return "Anonymous " + lo.Sample(animals)
}
