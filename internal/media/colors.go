package media

import (
	"fmt"
	"image"
	"math"
	"sort"

	"golang.org/x/image/draw"
)

// DominantColor is one k-means cluster of the resampled image.
type DominantColor struct {
	RGB        [3]int  `json:"rgb"`
	Percentage float64 `json:"percentage"`
}

const (
	sampleSize      = 100 // resample edge for color extraction
	kmeansMaxRounds = 20
)

// dominantColors resamples the image to 100×100 RGB and clusters the pixels
// with k-means, clusters sorted by descending membership.
func dominantColors(img image.Image, k int) []DominantColor {
	if k <= 0 {
		return nil
	}

	small := image.NewRGBA(image.Rect(0, 0, sampleSize, sampleSize))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, img.Bounds(), draw.Over, nil)

	pixels := make([][3]float64, 0, sampleSize*sampleSize)
	for y := 0; y < sampleSize; y++ {
		for x := 0; x < sampleSize; x++ {
			r, g, b, _ := small.At(x, y).RGBA()
			pixels = append(pixels, [3]float64{float64(r >> 8), float64(g >> 8), float64(b >> 8)})
		}
	}
	if k > len(pixels) {
		k = len(pixels)
	}

	centroids := kmeans(pixels, k)

	// Final assignment pass for membership counts.
	counts := make([]int, len(centroids))
	for _, p := range pixels {
		counts[nearestCentroid(p, centroids)]++
	}

	total := float64(len(pixels))
	colors := make([]DominantColor, 0, len(centroids))
	for i, c := range centroids {
		if counts[i] == 0 {
			continue
		}
		colors = append(colors, DominantColor{
			RGB: [3]int{
				clampByte(c[0]), clampByte(c[1]), clampByte(c[2]),
			},
			Percentage: math.Round(float64(counts[i])/total*10000) / 100,
		})
	}
	sort.Slice(colors, func(i, j int) bool { return colors[i].Percentage > colors[j].Percentage })
	return colors
}

// kmeans runs Lloyd's algorithm with deterministic spread initialization.
func kmeans(pixels [][3]float64, k int) [][3]float64 {
	centroids := make([][3]float64, k)
	for i := range centroids {
		centroids[i] = pixels[i*len(pixels)/k]
	}

	assignments := make([]int, len(pixels))
	for round := 0; round < kmeansMaxRounds; round++ {
		changed := false
		for i, p := range pixels {
			best := nearestCentroid(p, centroids)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && round > 0 {
			break
		}

		sums := make([][3]float64, k)
		counts := make([]int, k)
		for i, p := range pixels {
			c := assignments[i]
			sums[c][0] += p[0]
			sums[c][1] += p[1]
			sums[c][2] += p[2]
			counts[c]++
		}
		for i := range centroids {
			if counts[i] > 0 {
				centroids[i] = [3]float64{
					sums[i][0] / float64(counts[i]),
					sums[i][1] / float64(counts[i]),
					sums[i][2] / float64(counts[i]),
				}
			}
		}
	}
	return centroids
}

func nearestCentroid(p [3]float64, centroids [][3]float64) int {
	best, bestDist := 0, math.MaxFloat64
	for i, c := range centroids {
		d := sqDist(p, c)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func sqDist(a, b [3]float64) float64 {
	dr, dg, db := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return dr*dr + dg*dg + db*db
}

// websafeLevels are the 6 channel values of the 216-color web-safe palette.
var websafeLevels = [6]int{0, 51, 102, 153, 204, 255}

// websafeHistogram snaps each dominant color to the nearest web-safe triple
// and aggregates percentages by hex code.
func websafeHistogram(colors []DominantColor) map[string]float64 {
	hist := make(map[string]float64, len(colors))
	for _, c := range colors {
		hex := fmt.Sprintf("#%02x%02x%02x",
			snapChannel(c.RGB[0]), snapChannel(c.RGB[1]), snapChannel(c.RGB[2]))
		hist[hex] = math.Round((hist[hex]+c.Percentage)*100) / 100
	}
	return hist
}

// snapChannel picks the web-safe level minimizing squared distance.
func snapChannel(v int) int {
	best, bestDist := websafeLevels[0], math.MaxInt
	for _, level := range websafeLevels {
		d := (v - level) * (v - level)
		if d < bestDist {
			best, bestDist = level, d
		}
	}
	return best
}

func clampByte(v float64) int {
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}
