package cipher

// Per-letter tables indexed by alphabet position (a=0 .. z=25).
var (
	chaldeanTable = [26]int{
		1, 2, 3, 4, 5, 8, 3, 5, 1, 1, 2, 3, 4,
		5, 7, 8, 1, 2, 3, 4, 6, 6, 6, 5, 1, 7,
	}
	englishKabbalahTable = [26]int{
		1, 20, 13, 6, 25, 18, 11, 4, 23, 16, 9, 2, 21,
		14, 7, 26, 19, 12, 5, 24, 17, 10, 3, 22, 15, 8,
	}
	trigrammatonTable = [26]int{
		5, 20, 2, 23, 13, 12, 11, 3, 0, 7, 17, 1, 21,
		24, 10, 4, 16, 14, 15, 9, 25, 22, 8, 6, 18, 19,
	}
	keypadTable = [26]int{
		2, 2, 2, 3, 3, 3, 4, 4, 4, 5, 5, 5, 6,
		6, 6, 7, 7, 7, 7, 8, 8, 8, 9, 9, 9, 9,
	}
	primesTable = [26]int{
		2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41,
		43, 47, 53, 59, 61, 67, 71, 73, 79, 83, 89, 97, 101,
	}
	// Mirrored around the middle: m and n both carry 233.
	fibonacciTable = [26]int{
		1, 1, 2, 3, 5, 8, 13, 21, 34, 55, 89, 144, 233,
		233, 144, 89, 55, 34, 21, 13, 8, 5, 3, 2, 1, 1,
	}
	piTable = [26]int{
		3, 1, 4, 4, 6, 0, 5, 5, 1, 1, 2, 9, 9,
		6, 9, 3, 1, 4, 4, 2, 7, 8, 2, 3, 4, 3,
	}
	// a..i are 1..9; j is 600; k..z follow the classical progression.
	latinTable = [26]int{
		1, 2, 3, 4, 5, 6, 7, 8, 9, 600, 10, 20, 30,
		40, 50, 60, 70, 80, 90, 100, 200, 700, 900, 300, 400, 500,
	}
	septenaryCycle = [13]int{1, 2, 3, 4, 5, 6, 7, 6, 5, 4, 3, 2, 1}
)

// reduce is the digital-root form used by the Reduction schemes.
// 11, 22 and 33 are not special here.
func reduce(n int) int {
	return (n-1)%9 + 1
}
